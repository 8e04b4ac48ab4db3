package keycode_test

import (
	"testing"

	"github.com/Alia5/macropad/keycode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamedKeysUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, n := range keycode.Named {
		assert.False(t, seen[n.Name], "duplicate name %s", n.Name)
		seen[n.Name] = true

		got, ok := keycode.Lookup(n.Name)
		require.True(t, ok, n.Name)
		assert.Equal(t, n.Code, got, n.Name)
		assert.True(t, n.Code.Valid(), n.Name)
	}
	assert.Len(t, keycode.Names(), len(keycode.Named))
}

func TestNamedKeysRanges(t *testing.T) {
	for _, n := range keycode.Named {
		switch {
		case n.Code == keycode.None:
			assert.Equal(t, "KEY_NONE", n.Name)
		case n.Code.IsModifier():
		default:
			assert.GreaterOrEqual(t, int(n.Code), 176, n.Name)
			assert.LessOrEqual(t, int(n.Code), 251, n.Name)
		}
	}
}

func TestHashAndBackslashShareCode(t *testing.T) {
	assert.Equal(t, keycode.Hash, keycode.Backslash)
	assert.Equal(t, "KEY_HASH", keycode.Backslash.String())
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    keycode.KeyCode
		wantErr bool
	}{
		{in: "KEY_F11", want: keycode.F11},
		{in: "key_left_ctrl", want: keycode.LeftCtrl},
		{in: "left_ctrl", want: keycode.LeftCtrl},
		{in: "F2", want: keycode.F2},
		{in: "KEYPAD_8", want: keycode.Keypad8},
		{in: "'u'", want: keycode.Char('u')},
		{in: "u", want: keycode.Char('u')},
		{in: "7", want: keycode.Char('7')},
		{in: "'''", want: keycode.Char('\'')},
		{in: "[", want: keycode.Char('[')},
		{in: "0xB9", want: keycode.Hash},
		{in: "185", want: keycode.Hash},
		{in: "KEY_NONE", want: keycode.None},
		{in: "", wantErr: true},
		{in: "KEY_BOGUS", wantErr: true},
		{in: "256", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := keycode.Parse(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringParseRoundTrip(t *testing.T) {
	for i := 0; i < 256; i++ {
		k := keycode.KeyCode(i)
		if !k.Valid() {
			continue
		}
		got, err := keycode.Parse(k.String())
		require.NoError(t, err, "code %d (%s)", i, k)
		assert.Equal(t, k, got, "code %d (%s)", i, k)
	}
}

func TestValid(t *testing.T) {
	assert.True(t, keycode.None.Valid())
	assert.True(t, keycode.Char('a').Valid())
	assert.True(t, keycode.RightGUI.Valid())
	assert.True(t, keycode.F24.Valid())
	assert.False(t, keycode.KeyCode(0x01).Valid())
	assert.False(t, keycode.KeyCode(0x90).Valid())
	assert.False(t, keycode.KeyCode(255).Valid())
}

func TestHID(t *testing.T) {
	tests := []struct {
		name  string
		code  keycode.KeyCode
		usage uint8
		mods  uint8
		ok    bool
	}{
		{"lowercase", keycode.Char('r'), 0x15, 0, true},
		{"uppercase", keycode.Char('R'), 0x15, keycode.ModLeftShift, true},
		{"digit", keycode.Char('7'), 0x24, 0, true},
		{"bracket", keycode.Char(']'), 0x30, 0, true},
		{"enter", keycode.Enter, 0x28, 0, true},
		{"f1", keycode.F1, 0x3A, 0, true},
		{"f11", keycode.F11, 0x44, 0, true},
		{"f13", keycode.F13, 0x68, 0, true},
		{"hash", keycode.Hash, 0x31, 0, true},
		{"semicolon", keycode.Semicolon, 0x33, 0, true},
		{"quote", keycode.Quote, 0x34, 0, true},
		{"keypad 0", keycode.Keypad0, 0x62, 0, true},
		{"keypad 5", keycode.Keypad5, 0x5D, 0, true},
		{"keypad 8", keycode.Keypad8, 0x60, 0, true},
		{"menu", keycode.Menu, 0x65, 0, true},
		{"left ctrl", keycode.LeftCtrl, 0, keycode.ModLeftCtrl, true},
		{"right gui", keycode.RightGUI, 0, keycode.ModRightGUI, true},
		{"none", keycode.None, 0, 0, false},
		{"control char", keycode.KeyCode(0x02), 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usage, mods, ok := tt.code.HID()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.usage, usage)
			assert.Equal(t, tt.mods, mods)
		})
	}
}
