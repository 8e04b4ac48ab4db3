// Package keycode defines the key codes a macro pad binding can refer to.
//
// Codes follow the Arduino Keyboard library convention used by the pad's
// firmware: printable ASCII characters are their own code, modifiers live in
// 128..135 and every other non-printing key sits at its HID usage plus 136.
package keycode

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyCode identifies a single key. The zero value is the "no key" sentinel.
type KeyCode uint8

// None marks an unused binding slot.
const None KeyCode = 0

// Modifiers
const (
	LeftCtrl   KeyCode = 0x80
	LeftShift  KeyCode = 0x81
	LeftAlt    KeyCode = 0x82
	LeftGUI    KeyCode = 0x83
	RightCtrl  KeyCode = 0x84
	RightShift KeyCode = 0x85
	RightAlt   KeyCode = 0x86
	RightGUI   KeyCode = 0x87
)

// Keypad
const (
	Keypad0        KeyCode = 234
	Keypad1        KeyCode = 225
	Keypad2        KeyCode = 226
	Keypad3        KeyCode = 227
	Keypad4        KeyCode = 228
	Keypad5        KeyCode = 229
	Keypad6        KeyCode = 230
	Keypad7        KeyCode = 231
	Keypad8        KeyCode = 232
	Keypad9        KeyCode = 233
	KeypadAsterisk KeyCode = 221
	KeypadEnter    KeyCode = 224
	KeypadMinus    KeyCode = 222
	KeypadPeriod   KeyCode = 235
	KeypadPlus     KeyCode = 223
	KeypadSlash    KeyCode = 220
)

// Editing, navigation and punctuation keys
const (
	Hash        KeyCode = 185
	Backslash   KeyCode = 185 // same physical key as Hash on US layouts
	Backspace   KeyCode = 178
	CapsLock    KeyCode = 193
	Comma       KeyCode = 190
	Delete      KeyCode = 212
	Down        KeyCode = 217
	End         KeyCode = 213
	Enter       KeyCode = 176
	Equal       KeyCode = 182
	Esc         KeyCode = 177
	Home        KeyCode = 210
	Insert      KeyCode = 209
	Left        KeyCode = 216
	LeftBrace   KeyCode = 183
	Menu        KeyCode = 237
	Minus       KeyCode = 181
	NonUSNum    KeyCode = 186
	NumLock     KeyCode = 219
	PageDown    KeyCode = 214
	PageUp      KeyCode = 211
	Pause       KeyCode = 208
	Period      KeyCode = 191
	PrintScreen KeyCode = 206
	Quote       KeyCode = 188
	Right       KeyCode = 215
	RightBrace  KeyCode = 184
	ScrollLock  KeyCode = 207
	Semicolon   KeyCode = 187
	Slash       KeyCode = 192
	Space       KeyCode = 180
	Tab         KeyCode = 179
	Tilde       KeyCode = 189
	Up          KeyCode = 218
)

// Function keys
const (
	F1  KeyCode = 194
	F2  KeyCode = 195
	F3  KeyCode = 196
	F4  KeyCode = 197
	F5  KeyCode = 198
	F6  KeyCode = 199
	F7  KeyCode = 200
	F8  KeyCode = 201
	F9  KeyCode = 202
	F10 KeyCode = 203
	F11 KeyCode = 204
	F12 KeyCode = 205
	F13 KeyCode = 240
	F14 KeyCode = 241
	F15 KeyCode = 242
	F16 KeyCode = 243
	F17 KeyCode = 244
	F18 KeyCode = 245
	F19 KeyCode = 246
	F20 KeyCode = 247
	F21 KeyCode = 248
	F22 KeyCode = 249
	F23 KeyCode = 250
	F24 KeyCode = 251
)

// Char returns the code for a printable ASCII character.
func Char(c byte) KeyCode { return KeyCode(c) }

// IsModifier reports whether k is one of the eight modifier keys.
func (k KeyCode) IsModifier() bool { return k >= LeftCtrl && k <= RightGUI }

// IsPrintable reports whether k is a printable ASCII character (space excluded).
func (k KeyCode) IsPrintable() bool { return k > ' ' && k < 0x7F }

// Valid reports whether k can be emitted: the sentinel, an ASCII character
// with a US layout mapping, a modifier, or a named non-ASCII key.
func (k KeyCode) Valid() bool {
	switch {
	case k == None:
		return true
	case k < 0x80:
		_, ok := asciiUsage[byte(k)]
		return ok
	case k.IsModifier():
		return true
	default:
		_, ok := canonical[k]
		return ok
	}
}

// String returns the symbolic name of k, a quoted character for printable
// ASCII, or the hex value when k has no name.
func (k KeyCode) String() string {
	if k == None {
		return "KEY_NONE"
	}
	if k.IsPrintable() {
		return "'" + string(rune(k)) + "'"
	}
	if name, ok := canonical[k]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", uint8(k))
}

// Lookup resolves a symbolic name such as "KEY_F1" or "KEYPAD_5".
func Lookup(name string) (KeyCode, bool) {
	k, ok := byName[name]
	return k, ok
}

// Parse accepts a symbolic name (case-insensitive, "KEY_" prefix optional),
// a single character with or without single quotes, or an integer in [0,255]
// written in decimal or 0x-prefixed hex. A lone digit is the character, not
// the number.
func Parse(s string) (KeyCode, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return None, fmt.Errorf("empty key code")
	}
	if len(raw) == 3 && raw[0] == '\'' && raw[2] == '\'' {
		return parseChar(raw[1], s)
	}
	if len(raw) == 1 {
		return parseChar(raw[0], s)
	}

	upper := strings.ToUpper(raw)
	if k, ok := byName[upper]; ok {
		return k, nil
	}
	if k, ok := byName["KEY_"+upper]; ok {
		return k, nil
	}

	n, err := strconv.ParseUint(raw, 0, 8)
	if err != nil {
		return None, fmt.Errorf("unknown key code %q", s)
	}
	return KeyCode(n), nil
}

func parseChar(c byte, orig string) (KeyCode, error) {
	if c >= 0x80 {
		return None, fmt.Errorf("key code %q is not ASCII", orig)
	}
	return Char(c), nil
}

// MarshalText implements encoding.TextMarshaler.
func (k KeyCode) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *KeyCode) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
