package keymap

import (
	"fmt"
	"strings"
)

// PressMode selects when a binding's keys are sent.
type PressMode uint8

const (
	// Hold presses the keys while the button is down, like a normal key.
	// Host-side auto-repeat may kick in.
	Hold PressMode = 0
	// RapidFire repeatedly taps the keys for as long as the button is down.
	RapidFire PressMode = 1
	// TapOnRelease sends nothing on press and taps the keys on release.
	// Used for inputs prone to contact bounce, such as D-pads.
	TapOnRelease PressMode = 2
)

var modeNames = [...]string{
	Hold:         "hold",
	RapidFire:    "rapid_fire",
	TapOnRelease: "tap_on_release",
}

// Modes lists every press mode.
func Modes() []PressMode { return []PressMode{Hold, RapidFire, TapOnRelease} }

// Valid reports whether m is one of the three defined modes.
func (m PressMode) Valid() bool { return int(m) < len(modeNames) }

func (m PressMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("PressMode(%d)", uint8(m))
	}
	return modeNames[m]
}

// FirmwareName returns the constant the firmware headers use for m.
func (m PressMode) FirmwareName() string {
	switch m {
	case Hold:
		return "BUTTON_PRESS_HOLD"
	case RapidFire:
		return "BUTTON_RAPID_FIRE"
	case TapOnRelease:
		return "BUTTON_TAP_ON_RELEASE"
	}
	return fmt.Sprintf("%d", uint8(m))
}

// ParsePressMode accepts the names "hold", "rapid_fire" and "tap_on_release"
// (case-insensitive, '-' or '_' separated) as well as the firmware constants.
func ParsePressMode(s string) (PressMode, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	switch norm {
	case "hold", "press_hold", "button_press_hold":
		return Hold, nil
	case "rapid_fire", "rapidfire", "button_rapid_fire":
		return RapidFire, nil
	case "tap_on_release", "taponrelease", "button_tap_on_release":
		return TapOnRelease, nil
	}
	return 0, fmt.Errorf("unknown press mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m PressMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid press mode %d", uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *PressMode) UnmarshalText(b []byte) error {
	v, err := ParsePressMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
