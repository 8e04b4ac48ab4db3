// Package runner wires button sources, the macro engine and the keymap
// watcher under one suture supervisor.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Alia5/macropad/input"
	"github.com/Alia5/macropad/keymap"
	"github.com/Alia5/macropad/macro"

	"github.com/thejerf/suture/v4"
)

// Options describes one run. Events is shared between the sources, which
// write to it, and the engine, which consumes it. Keep it unbuffered: a
// source's send then only completes once the engine took the event, so
// nothing is lost when a source ends the run.
type Options struct {
	Engine  *macro.Engine
	Events  chan macro.Event
	Sources []suture.Service
	// KeymapPath is watched for changes when Watch is set.
	KeymapPath string
	Watch      bool
	// Settings the keymap was loaded with, compared on reload.
	Settings keymap.Settings
	Logger     *slog.Logger
	// Extra services, e.g. LED feedback.
	Services []suture.Service
}

// Run supervises everything until ctx is done or a source reports that
// its input is closed. Either way ends in a nil error.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if len(opts.Sources) == 0 {
		return errors.New("no button sources configured")
	}

	sup := suture.New("macropad", suture.Spec{
		EventHook: eventHook(logger),
		Timeout:   5 * time.Second,
	})
	sup.Add(&engineService{engine: opts.Engine, events: opts.Events, logger: logger})
	for _, src := range opts.Sources {
		sup.Add(&stopOnClose{Service: src})
	}
	if opts.Watch && opts.KeymapPath != "" {
		sup.Add(&KeymapWatcher{Path: opts.KeymapPath, Engine: opts.Engine, Logger: logger, Settings: opts.Settings})
	}
	for _, svc := range opts.Services {
		sup.Add(svc)
	}

	err := sup.Serve(ctx)
	switch {
	case err == nil,
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, suture.ErrTerminateSupervisorTree):
		return nil
	}
	return fmt.Errorf("supervisor: %w", err)
}

func eventHook(logger *slog.Logger) suture.EventHook {
	return func(evt suture.Event) {
		switch evt.Type() {
		case suture.EventTypeServiceTerminate, suture.EventTypeServicePanic:
			logger.Warn("Service stopped", "event", evt.String())
		case suture.EventTypeBackoff:
			logger.Warn("Too many failures, backing off", "event", evt.String())
		default:
			logger.Debug("supervisor event", "event", evt.String())
		}
	}
}

type engineService struct {
	engine *macro.Engine
	events <-chan macro.Event
	logger *slog.Logger
}

func (s *engineService) String() string { return "engine" }

func (s *engineService) Serve(ctx context.Context) error {
	err := s.engine.Run(ctx, s.events)
	if ctx.Err() != nil {
		s.logger.Debug("engine stopped", "error", err)
		return ctx.Err()
	}
	return err
}

// stopOnClose ends the whole tree once a source's input is gone.
type stopOnClose struct {
	suture.Service
}

func (s *stopOnClose) String() string { return fmt.Sprint(s.Service) }

func (s *stopOnClose) Serve(ctx context.Context) error {
	err := s.Service.Serve(ctx)
	if errors.Is(err, input.ErrInputClosed) {
		return suture.ErrTerminateSupervisorTree
	}
	return err
}
