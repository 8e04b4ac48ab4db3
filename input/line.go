package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/Alia5/macropad/macro"
)

// ReaderSource reads the line protocol from a single stream, usually stdin.
// Serve returns ErrInputClosed at EOF.
type ReaderSource struct {
	R      io.Reader
	Out    chan<- macro.Event
	Logger *slog.Logger
}

func (s *ReaderSource) String() string { return "line reader" }

func (s *ReaderSource) Serve(ctx context.Context) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(s.R)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	held := pressed{}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-scanErr:
			if rerr := send(ctx, s.Out, held.releases()...); rerr != nil {
				return rerr
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return ErrInputClosed
		case line := <-lines:
			evs, err := ParseLine(line)
			if err != nil {
				orDiscard(s.Logger).Warn("ignoring input line", "line", line, "error", err)
				continue
			}
			held.track(evs)
			if err := send(ctx, s.Out, evs...); err != nil {
				return err
			}
		}
	}
}

// TCPSource accepts any number of line protocol clients. Buttons a client
// holds are released when it disconnects.
type TCPSource struct {
	Addr   string
	Out    chan<- macro.Event
	Logger *slog.Logger

	mu sync.Mutex
	ln net.Listener
}

func (s *TCPSource) String() string { return "tcp " + s.Addr }

// Listen binds the listener ahead of Serve and returns its address.
func (s *TCPSource) Listen() (net.Addr, error) {
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

func (s *TCPSource) Serve(ctx context.Context) error {
	if _, err := s.Listen(); err != nil {
		return err
	}
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.ln = nil
		s.mu.Unlock()
	}()

	orDiscard(s.Logger).Info("Line input listening", "addr", ln.Addr().String())
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	// clients are dropped when Serve returns for any reason; their held
	// buttons are still released on ctx
	connCtx, dropClients := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer dropClients()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			_ = ln.Close()
			return fmt.Errorf("accept: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handle(ctx, connCtx, conn)
		}()
	}
}

func (s *TCPSource) handle(ctx, connCtx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()
	orDiscard(s.Logger).Info("Line client connected", "remote", remote)
	stop := context.AfterFunc(connCtx, func() { _ = conn.Close() })
	defer stop()
	defer conn.Close()

	held := pressed{}
	defer func() {
		_ = send(ctx, s.Out, held.releases()...)
		orDiscard(s.Logger).Info("Line client disconnected", "remote", remote)
	}()

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		evs, err := ParseLine(sc.Text())
		if err != nil {
			orDiscard(s.Logger).Warn("ignoring input line", "remote", remote, "line", sc.Text(), "error", err)
			_, _ = fmt.Fprintf(conn, "error: %v\n", err)
			continue
		}
		held.track(evs)
		if err := send(ctx, s.Out, evs...); err != nil {
			return
		}
	}
}
