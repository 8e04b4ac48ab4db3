// Package keymap holds the macro pad's button bindings: for every physical
// button, up to four keys and the mode that decides when they are sent.
package keymap

import (
	"fmt"
	"slices"

	"github.com/Alia5/macropad/keycode"
)

// SlotsPerBinding is the number of key slots every binding carries.
const SlotsPerBinding = 4

// MaxButtons bounds the table size; button indices travel as a single byte.
const MaxButtons = 255

// Binding maps one physical button to a key sequence.
// Keys are pressed in slot order and released in reverse; unused slots hold
// keycode.None and must all follow the used ones.
type Binding struct {
	Keys  [SlotsPerBinding]keycode.KeyCode
	Mode  PressMode
	Label string
}

// Keys builds a Binding from up to four keys, padding the rest with
// keycode.None. It panics on more than four keys; files go through
// Decode, which reports ErrTooManyKeys instead.
func Keys(mode PressMode, keys ...keycode.KeyCode) Binding {
	if len(keys) > SlotsPerBinding {
		panic(fmt.Sprintf("keymap.Keys: %d keys, at most %d fit a binding", len(keys), SlotsPerBinding))
	}
	b := Binding{Mode: mode}
	copy(b.Keys[:], keys)
	return b
}

// WithLabel returns a copy of b carrying label.
func (b Binding) WithLabel(label string) Binding {
	b.Label = label
	return b
}

// PressOrder returns the keys in the order they are pressed, skipping empty
// slots.
func (b Binding) PressOrder() []keycode.KeyCode {
	out := make([]keycode.KeyCode, 0, SlotsPerBinding)
	for _, k := range b.Keys {
		if k != keycode.None {
			out = append(out, k)
		}
	}
	return out
}

// ReleaseOrder returns the keys in the order they are released, the reverse
// of PressOrder.
func (b Binding) ReleaseOrder() []keycode.KeyCode {
	out := b.PressOrder()
	slices.Reverse(out)
	return out
}

// Empty reports whether every slot is keycode.None. Empty bindings are valid
// and send nothing.
func (b Binding) Empty() bool {
	return b.Keys == [SlotsPerBinding]keycode.KeyCode{}
}

// Table is the full set of bindings, indexed by button number.
type Table []Binding

// Lookup returns the binding for button i.
func (t Table) Lookup(i int) (Binding, bool) {
	if i < 0 || i >= len(t) {
		return Binding{}, false
	}
	return t[i], true
}

// Clone returns a copy of t that shares no storage with it.
func (t Table) Clone() Table {
	return slices.Clone(t)
}

// Duplicates groups buttons whose key sequence and mode are identical.
// Only groups with two or more buttons are returned, ordered by their first
// button. Empty bindings are ignored.
func (t Table) Duplicates() [][]int {
	type key struct {
		keys [SlotsPerBinding]keycode.KeyCode
		mode PressMode
	}
	groups := map[key][]int{}
	var order []key
	for i, b := range t {
		if b.Empty() {
			continue
		}
		k := key{b.Keys, b.Mode}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}
	var out [][]int
	for _, k := range order {
		if len(groups[k]) > 1 {
			out = append(out, groups[k])
		}
	}
	return out
}

// Settings are the scalar options that travel with a table.
type Settings struct {
	// Debug enables verbose report logging. On the firmware this slows input
	// processing considerably.
	Debug bool
	// LEDIdleBrightness and LEDActiveBrightness are percentages.
	LEDIdleBrightness   uint8
	LEDActiveBrightness uint8
}

// Config is a complete macro pad configuration.
type Config struct {
	Settings
	Bindings Table
}
