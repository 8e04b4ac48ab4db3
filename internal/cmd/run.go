package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alia5/macropad/apiclient"
	"github.com/Alia5/macropad/device/keyboard"
	"github.com/Alia5/macropad/input"
	"github.com/Alia5/macropad/internal/log"
	"github.com/Alia5/macropad/internal/runner"
	"github.com/Alia5/macropad/macro"

	"github.com/thejerf/suture/v4"
	"golang.org/x/term"
)

type Run struct {
	KeymapFlags `embed:""`
	Addr        string           `help:"VIIPER API server address" default:"localhost:3242" env:"MACROPAD_VIIPER_ADDR"`
	Client      apiclient.Config `embed:"" prefix:"viiper."`
	AskPassword bool             `help:"Prompt for the VIIPER password on the terminal"`
	BusID       uint32           `help:"Bus to attach the keyboard to; 0 picks the first existing bus" default:"0" env:"MACROPAD_BUS_ID"`
	Watch       bool             `help:"Reload the keymap when its file changes" default:"true" negatable:""`
	Engine      macro.Config     `embed:""`
	Sources     []string         `name:"source" help:"Button sources: stdin, tcp, websocket, hid" default:"stdin" env:"MACROPAD_SOURCES"`
	TCPAddr     string           `name:"tcp-addr" help:"Listen address of the tcp source" default:"localhost:3243" env:"MACROPAD_TCP_ADDR"`
	WSAddr      string           `name:"ws-addr" help:"Listen address of the websocket source" default:"localhost:3244" env:"MACROPAD_WS_ADDR"`
	WSPath      string           `name:"ws-path" help:"HTTP path of the websocket source" default:"/buttons" env:"MACROPAD_WS_PATH"`
	HID         input.HIDConfig  `embed:"" prefix:"hid."`
}

func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger, logCfg log.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := r.load()
	if err != nil {
		return err
	}
	for _, group := range cfg.Bindings.Duplicates() {
		logger.Warn("Buttons share a binding", "buttons", group)
	}
	rawLogger = debugRawLogger(cfg.Debug, logCfg, rawLogger, os.Stdout)

	clientCfg := r.Client
	if r.AskPassword {
		pw, err := readPassword(os.Stdin, os.Stderr)
		if err != nil {
			return err
		}
		clientCfg.Password = pw
	}
	client := apiclient.New(r.Addr, &clientCfg)

	events := make(chan macro.Event)
	sources, err := r.sources(events, logger)
	if err != nil {
		return err
	}

	att, err := client.Attach(ctx, r.BusID, keyboard.DeviceType, nil)
	if err != nil {
		return fmt.Errorf("attach keyboard: %w", err)
	}
	logger.Info("Attached virtual keyboard", "addr", r.Addr, "bus", att.Device.BusID, "device", att.Device.DevId, "keymap", r.source())

	writer := keyboard.NewWriter(att, rawLogger)
	engine := macro.New(cfg.Bindings, writer, r.Engine, logger)

	runErr := runner.Run(ctx, runner.Options{
		Engine:     engine,
		Events:     events,
		Sources:    sources,
		KeymapPath: r.Keymap,
		Watch:      r.Watch,
		Settings:   cfg.Settings,
		Logger:     logger,
		Services: []suture.Service{&runner.LEDMonitor{
			Stream: att,
			Logger: logger,
			OnChange: func(led keyboard.LEDState) {
				rawLogger.Log(true, []byte{led.Byte()})
			},
		}},
	})

	cleanup, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := writer.Reset(); err != nil {
		logger.Debug("Final release failed", "error", err)
	}
	if err := att.Detach(cleanup); err != nil {
		logger.Warn("Detach failed", "error", err)
	}
	logger.Info("Stopped")
	return runErr
}

func (r *Run) sources(events chan<- macro.Event, logger *slog.Logger) ([]suture.Service, error) {
	var out []suture.Service
	seen := map[string]bool{}
	for _, name := range r.Sources {
		if seen[name] {
			continue
		}
		seen[name] = true
		switch name {
		case "stdin":
			out = append(out, &input.ReaderSource{R: os.Stdin, Out: events, Logger: logger})
		case "tcp":
			src := &input.TCPSource{Addr: r.TCPAddr, Out: events, Logger: logger}
			addr, err := src.Listen()
			if err != nil {
				return nil, err
			}
			logger.Info("Listening for line protocol clients", "addr", addr.String())
			out = append(out, src)
		case "websocket":
			src := &input.WebSocketSource{Addr: r.WSAddr, Path: r.WSPath, Out: events, Logger: logger}
			addr, err := src.Listen()
			if err != nil {
				return nil, err
			}
			logger.Info("Listening for websocket clients", "addr", addr.String(), "path", r.WSPath)
			out = append(out, src)
		case "hid":
			out = append(out, &input.HIDSource{Config: r.HID, Out: events, Logger: logger})
		default:
			return nil, fmt.Errorf("unknown source %q; expected stdin, tcp, websocket or hid", name)
		}
	}
	return out, nil
}

// debugRawLogger dumps reports to stdout for a keymap with debug set, unless
// --log.raw-file already sends them somewhere.
func debugRawLogger(debug bool, logCfg log.Config, current log.RawLogger, stdout io.Writer) log.RawLogger {
	if !debug || logCfg.RawFile != "" {
		return current
	}
	return log.NewRaw(stdout)
}

func readPassword(in *os.File, prompt io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("--ask-password needs a terminal")
	}
	_, _ = fmt.Fprint(prompt, "VIIPER password: ")
	pw, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
