package firmware_test

import (
	"bufio"
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/Alia5/macropad/internal/firmware"
	"github.com/Alia5/macropad/keycode"
	"github.com/Alia5/macropad/keymap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteral(t *testing.T) {
	tests := []struct {
		in   keycode.KeyCode
		want string
	}{
		{keycode.None, "KEY_NONE"},
		{keycode.Char('r'), "char('r')"},
		{keycode.Char('['), "char('[')"},
		{keycode.Char(' '), "char(' ')"},
		{keycode.Char('\''), `char('\'')`},
		{keycode.Char('\\'), `char('\\')`},
		{keycode.Char('\t'), "9"},
		{keycode.LeftCtrl, "KEY_LEFT_CTRL"},
		{keycode.F11, "KEY_F11"},
		{keycode.Backslash, "KEY_HASH"},
		{keycode.Keypad8, "KEYPAD_8"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, firmware.Literal(tt.in))
	}
}

var defineRe = regexp.MustCompile(`^#define (\w+) (\d+)$`)

func TestKeysHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, firmware.WriteKeysHeader(&buf))
	out := buf.String()

	assert.Contains(t, out, "#ifndef NON_ASCII_KEYS_H\n#define NON_ASCII_KEYS_H\n")
	assert.Contains(t, out, "#define BUTTON_PRESS_HOLD 0\n")
	assert.Contains(t, out, "#define BUTTON_RAPID_FIRE 1\n")
	assert.Contains(t, out, "#define BUTTON_TAP_ON_RELEASE 2\n")
	assert.Contains(t, out, "#define KEY_NONE 0\n")
	assert.Contains(t, out, "#define KEY_BACKSLASH 185\n")
	assert.NotContains(t, out, "KEY_LEFT_CTRL")
	assert.True(t, strings.HasSuffix(out, "#endif // NON_ASCII_KEYS_H\n"))

	defined := map[string]bool{}
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		m := defineRe.FindStringSubmatch(sc.Text())
		if m == nil || strings.HasPrefix(m[1], "BUTTON_") {
			continue
		}
		v, err := strconv.Atoi(m[2])
		require.NoError(t, err)
		code, ok := keycode.Lookup(m[1])
		require.True(t, ok, m[1])
		assert.Equal(t, keycode.KeyCode(v), code, m[1])
		defined[m[1]] = true
	}

	for _, nk := range keycode.Named {
		if nk.Code.IsModifier() {
			continue
		}
		assert.True(t, defined[nk.Name], "%s missing", nk.Name)
	}
}

func TestConfigHeaderDefault(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, firmware.WriteConfigHeader(&buf, keymap.Default()))
	out := buf.String()

	assert.Contains(t, out, "const bool DEBUG = false;\n")
	assert.Contains(t, out, "#define LED_IDLE_BRIGHTNESS 1\n")
	assert.Contains(t, out, "#define LED_ACTIVE_BRIGHTNESS 80\n")
	assert.Contains(t, out, "const uint8_t keybindings[34][5] = {\n")
	assert.Contains(t, out, "  { char('r'), KEY_NONE, KEY_NONE, KEY_NONE, BUTTON_PRESS_HOLD }, // Button A\n")
	assert.Contains(t, out, "  { KEY_LEFT_CTRL, char('u'), KEY_NONE, KEY_NONE, BUTTON_PRESS_HOLD }, // Button G\n")
	assert.Contains(t, out, "  { KEY_HASH, KEY_NONE, KEY_NONE, KEY_NONE, BUTTON_PRESS_HOLD }, // Button M\n")
	assert.Contains(t, out, "  { KEY_NONE, KEY_NONE, KEY_NONE, KEY_NONE, BUTTON_TAP_ON_RELEASE }, // Button 5\n")
	assert.Contains(t, out, "  { KEYPAD_5, KEY_NONE, KEY_NONE, KEY_NONE, BUTTON_TAP_ON_RELEASE }, // Button 10\n")
	assert.Equal(t, 34, strings.Count(out, "BUTTON_"))
}

// The rows read back through keycode.Parse must reproduce the table.
func TestConfigHeaderRows(t *testing.T) {
	cfg := keymap.Default()
	var buf bytes.Buffer
	require.NoError(t, firmware.WriteConfigHeader(&buf, cfg))

	rowRe := regexp.MustCompile(`^  \{ (.+) \},`)
	var table keymap.Table
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		m := rowRe.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		fields := strings.Split(m[1], ", ")
		require.Len(t, fields, 5)
		var b keymap.Binding
		for i, f := range fields[:4] {
			f = strings.TrimSuffix(strings.TrimPrefix(f, "char("), ")")
			k, err := keycode.Parse(f)
			require.NoError(t, err, f)
			b.Keys[i] = k
		}
		mode, err := keymap.ParsePressMode(fields[4])
		require.NoError(t, err)
		b.Mode = mode
		table = append(table, b)
	}

	require.Len(t, table, len(cfg.Bindings))
	for i := range table {
		assert.Equal(t, cfg.Bindings[i].Keys, table[i].Keys, "button %d", i)
		assert.Equal(t, cfg.Bindings[i].Mode, table[i].Mode, "button %d", i)
	}
}

func TestConfigHeaderLabelsAndErrors(t *testing.T) {
	cfg := keymap.Config{
		Settings: keymap.Settings{Debug: true, LEDIdleBrightness: 0, LEDActiveBrightness: 100},
		Bindings: keymap.Table{
			keymap.Keys(keymap.RapidFire, keycode.PageDown).WithLabel("scroll\n  down"),
			keymap.Keys(keymap.Hold, keycode.Char('\'')),
		},
	}
	var buf bytes.Buffer
	require.NoError(t, firmware.WriteConfigHeader(&buf, cfg))
	assert.Contains(t, buf.String(), "const bool DEBUG = true;")
	assert.Contains(t, buf.String(), "  { KEY_PAGE_DOWN, KEY_NONE, KEY_NONE, KEY_NONE, BUTTON_RAPID_FIRE }, // scroll down\n")
	assert.Contains(t, buf.String(), "  { char('\\''), KEY_NONE, KEY_NONE, KEY_NONE, BUTTON_PRESS_HOLD },\n")

	cfg.Bindings[0].Keys = [4]keycode.KeyCode{keycode.None, keycode.F1}
	err := firmware.WriteConfigHeader(&bytes.Buffer{}, cfg)
	assert.ErrorIs(t, err, keymap.ErrGap)
}

func TestGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, firmware.Generate(slog.New(slog.DiscardHandler), dir, keymap.Default()))

	for _, name := range []string{firmware.KeysHeader, firmware.ConfigHeader} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Contains(t, string(b), "#endif")
	}
}
