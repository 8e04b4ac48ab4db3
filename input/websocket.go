package input

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Alia5/macropad/macro"

	"github.com/gorilla/websocket"
)

// ButtonMessage is the JSON message WebSocket clients send.
type ButtonMessage struct {
	Button  int  `json:"button"`
	Pressed bool `json:"pressed"`
}

// ErrorMessage is sent back for messages that cannot be applied.
type ErrorMessage struct {
	Error string `json:"error"`
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// WebSocketSource serves button events to WebSocket clients on Path. Buttons
// a client holds are released when it disconnects.
type WebSocketSource struct {
	Addr   string
	Path   string
	Out    chan<- macro.Event
	Logger *slog.Logger

	mu sync.Mutex
	ln net.Listener
}

func (s *WebSocketSource) String() string { return "websocket " + s.Addr }

// Listen binds the listener ahead of Serve and returns its address.
func (s *WebSocketSource) Listen() (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		ln, err := net.Listen("tcp", s.Addr)
		if err != nil {
			return nil, fmt.Errorf("listen %s: %w", s.Addr, err)
		}
		s.ln = ln
	}
	return s.ln.Addr(), nil
}

func (s *WebSocketSource) Serve(ctx context.Context) error {
	if _, err := s.Listen(); err != nil {
		return err
	}
	s.mu.Lock()
	ln := s.ln
	s.ln = nil
	s.mu.Unlock()

	path := s.Path
	if path == "" {
		path = "/"
	}
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		s.handle(ctx, w, r)
	})
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	orDiscard(s.Logger).Info("WebSocket input listening", "addr", ln.Addr().String(), "path", path)
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		<-errc
		return ctx.Err()
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve websocket: %w", err)
	}
}

func (s *WebSocketSource) handle(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logger := orDiscard(s.Logger)
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	logger.Info("WebSocket client connected", "remote", r.RemoteAddr)
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	held := pressed{}
	defer func() {
		_ = send(ctx, s.Out, held.releases()...)
		logger.Info("WebSocket client disconnected", "remote", r.RemoteAddr)
	}()

	for {
		var msg ButtonMessage
		if err := conn.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				s.reply(conn, err.Error())
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("websocket read failed", "remote", r.RemoteAddr, "error", err)
			}
			return
		}
		if msg.Button < 0 {
			s.reply(conn, fmt.Sprintf("invalid button %d", msg.Button))
			continue
		}
		ev := macro.Event{Button: msg.Button, Pressed: msg.Pressed}
		held.track([]macro.Event{ev})
		if err := send(ctx, s.Out, ev); err != nil {
			return
		}
	}
}

func (s *WebSocketSource) reply(conn *websocket.Conn, msg string) {
	_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
	if err := conn.WriteJSON(ErrorMessage{Error: msg}); err != nil {
		orDiscard(s.Logger).Debug("websocket write failed", "error", err)
	}
}
