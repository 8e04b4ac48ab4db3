// Package macro turns button presses into key presses according to each
// binding's press mode.
package macro

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Alia5/macropad/keycode"
	"github.com/Alia5/macropad/keymap"
)

// DefaultRapidFireInterval is the period between taps of a held rapid-fire
// button.
const DefaultRapidFireInterval = 50 * time.Millisecond

// ErrUnknownButton is returned for events on buttons outside the table.
var ErrUnknownButton = errors.New("unknown button")

// Keyboard receives individual key transitions.
type Keyboard interface {
	Press(k keycode.KeyCode) error
	Release(k keycode.KeyCode) error
}

// Event is a button edge.
type Event struct {
	Button  int
	Pressed bool
}

func (e Event) String() string {
	if e.Pressed {
		return fmt.Sprintf("down %d", e.Button)
	}
	return fmt.Sprintf("up %d", e.Button)
}

// Config tunes an Engine.
type Config struct {
	RapidFireInterval time.Duration `help:"Period between taps of a held rapid-fire button" default:"50ms" env:"MACROPAD_RAPID_FIRE_INTERVAL"`
}

// Engine applies a keymap to button events. It is safe for concurrent use.
type Engine struct {
	mu     sync.Mutex
	table  keymap.Table
	kb     Keyboard
	logger *slog.Logger
	cfg    Config

	// held records the binding each button was pressed with, so a release
	// undoes exactly what the press did even if the table changed meanwhile.
	held map[int]keymap.Binding
}

// New creates an Engine. A nil logger discards logs.
func New(table keymap.Table, kb Keyboard, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.RapidFireInterval <= 0 {
		cfg.RapidFireInterval = DefaultRapidFireInterval
	}
	return &Engine{
		table:  table.Clone(),
		kb:     kb,
		logger: logger,
		cfg:    cfg,
		held:   map[int]keymap.Binding{},
	}
}

// SetTable replaces the keymap. Buttons held at the time keep their old
// binding until released.
func (e *Engine) SetTable(table keymap.Table) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.table = table.Clone()
}

// Active reports whether any button is held.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.held) > 0
}

// Handle applies one button edge. A press of a button already held and a
// release of a button not held are ignored.
func (e *Engine) Handle(ev Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ev.Pressed {
		if _, ok := e.held[ev.Button]; ok {
			return nil
		}
		b, ok := e.table.Lookup(ev.Button)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownButton, ev.Button)
		}
		e.held[ev.Button] = b
		e.logger.Debug("button pressed", "button", ev.Button, "mode", b.Mode, "keys", b.PressOrder())

		var err error
		switch b.Mode {
		case keymap.Hold:
			err = e.press(b.PressOrder())
		case keymap.RapidFire:
			err = e.tap(b)
		}
		if err != nil {
			delete(e.held, ev.Button)
		}
		return err
	}

	b, ok := e.held[ev.Button]
	if !ok {
		return nil
	}
	delete(e.held, ev.Button)
	e.logger.Debug("button released", "button", ev.Button, "mode", b.Mode)

	switch b.Mode {
	case keymap.Hold:
		return e.release(b.ReleaseOrder())
	case keymap.TapOnRelease:
		return e.tap(b)
	}
	return nil
}

// Tick taps every held rapid-fire button once, lowest button first.
func (e *Engine) Tick() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	buttons := make([]int, 0, len(e.held))
	for btn, b := range e.held {
		if b.Mode == keymap.RapidFire {
			buttons = append(buttons, btn)
		}
	}
	slices.Sort(buttons)

	var errs []error
	for _, btn := range buttons {
		if err := e.tap(e.held[btn]); err != nil {
			errs = append(errs, fmt.Errorf("button %d: %w", btn, err))
		}
	}
	return errors.Join(errs...)
}

// ReleaseAll forgets every held button, releasing the keys of held Hold
// bindings.
func (e *Engine) ReleaseAll() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	buttons := make([]int, 0, len(e.held))
	for btn := range e.held {
		buttons = append(buttons, btn)
	}
	slices.Sort(buttons)

	var errs []error
	for _, btn := range buttons {
		b := e.held[btn]
		delete(e.held, btn)
		if b.Mode != keymap.Hold {
			continue
		}
		if err := e.release(b.ReleaseOrder()); err != nil {
			errs = append(errs, fmt.Errorf("button %d: %w", btn, err))
		}
	}
	return errors.Join(errs...)
}

// Run consumes events until ctx is done or events is closed, and drives
// rapid-fire taps in between. Held keys are released before returning.
// Unknown buttons are logged and skipped; keyboard errors end the run.
func (e *Engine) Run(ctx context.Context, events <-chan Event) error {
	ticker := time.NewTicker(e.cfg.RapidFireInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return errors.Join(ctx.Err(), e.ReleaseAll())
		case ev, ok := <-events:
			if !ok {
				return e.ReleaseAll()
			}
			if err := e.Handle(ev); err != nil {
				if errors.Is(err, ErrUnknownButton) {
					e.logger.Warn("ignoring event", "event", ev.String(), "error", err)
					continue
				}
				return fmt.Errorf("handle %s: %w", ev, err)
			}
		case <-ticker.C:
			if err := e.Tick(); err != nil {
				return fmt.Errorf("rapid fire: %w", err)
			}
		}
	}
}

// press presses keys in order. On failure the keys already pressed are
// released again.
func (e *Engine) press(keys []keycode.KeyCode) error {
	for i, k := range keys {
		if err := e.kb.Press(k); err != nil {
			pressed := slices.Clone(keys[:i])
			slices.Reverse(pressed)
			return errors.Join(fmt.Errorf("press %s: %w", k, err), e.release(pressed))
		}
	}
	return nil
}

// release releases keys in order, attempting every key even after a
// failure.
func (e *Engine) release(keys []keycode.KeyCode) error {
	var errs []error
	for _, k := range keys {
		if err := e.kb.Release(k); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) tap(b keymap.Binding) error {
	if err := e.press(b.PressOrder()); err != nil {
		return err
	}
	return e.release(b.ReleaseOrder())
}
