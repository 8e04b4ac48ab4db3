package keymap

import (
	"errors"
	"fmt"

	"github.com/Alia5/macropad/keycode"
)

var (
	ErrInvalidKey      = errors.New("invalid key code")
	ErrGap             = errors.New("key follows an empty slot")
	ErrInvalidMode     = errors.New("invalid press mode")
	ErrTooManyKeys     = errors.New("more than four keys")
	ErrNoBindings      = errors.New("no bindings")
	ErrTooManyBindings = errors.New("too many bindings")
	ErrBrightness      = errors.New("brightness out of range")
)

// BindingError reports a problem with one binding. Slot is -1 when the
// problem is not tied to a slot.
type BindingError struct {
	Button int
	Slot   int
	Err    error
}

func (e *BindingError) Error() string {
	if e.Slot < 0 {
		return fmt.Sprintf("button %d: %v", e.Button, e.Err)
	}
	return fmt.Sprintf("button %d slot %d: %v", e.Button, e.Slot, e.Err)
}

func (e *BindingError) Unwrap() error { return e.Err }

// Validate checks b on its own; errors carry button index -1.
func (b Binding) Validate() error {
	return b.validate(-1)
}

func (b Binding) validate(button int) error {
	var errs []error
	seenNone := false
	for slot, k := range b.Keys {
		if !k.Valid() {
			errs = append(errs, &BindingError{button, slot, fmt.Errorf("%w: %s", ErrInvalidKey, k)})
			continue
		}
		if k == keycode.None {
			seenNone = true
			continue
		}
		if seenNone {
			errs = append(errs, &BindingError{button, slot, ErrGap})
		}
	}
	if !b.Mode.Valid() {
		errs = append(errs, &BindingError{button, -1, fmt.Errorf("%w: %d", ErrInvalidMode, uint8(b.Mode))})
	}
	return errors.Join(errs...)
}

// Validate checks every binding and the table size. All problems are
// reported, joined.
func (t Table) Validate() error {
	if len(t) == 0 {
		return ErrNoBindings
	}
	var errs []error
	if len(t) > MaxButtons {
		errs = append(errs, fmt.Errorf("%w: %d > %d", ErrTooManyBindings, len(t), MaxButtons))
	}
	for i, b := range t {
		if err := b.validate(i); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Validate checks that both brightness values are percentages.
func (s Settings) Validate() error {
	var errs []error
	if s.LEDIdleBrightness > 100 {
		errs = append(errs, fmt.Errorf("idle %w: %d", ErrBrightness, s.LEDIdleBrightness))
	}
	if s.LEDActiveBrightness > 100 {
		errs = append(errs, fmt.Errorf("active %w: %d", ErrBrightness, s.LEDActiveBrightness))
	}
	return errors.Join(errs...)
}

// Validate checks settings and bindings.
func (c Config) Validate() error {
	return errors.Join(c.Settings.Validate(), c.Bindings.Validate())
}
