// Package firmware renders a keymap as the C headers the macropad
// firmware is built from.
package firmware

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/Alia5/macropad/keycode"
	"github.com/Alia5/macropad/keymap"
)

const (
	KeysHeader   = "non_ascii_keys.h"
	ConfigHeader = "config.h"
)

var keysTmpl = template.Must(template.New("keys").Parse(`// Keyboard scan codes for the project
// Arduino defaults to US keyboard layout so some of these may require changing
// Do not change these unless you really know what you are doing

#ifndef NON_ASCII_KEYS_H
#define NON_ASCII_KEYS_H

{{range .Modes}}#define {{.FirmwareName}} {{printf "%d" .}}
{{end}}#define KEY_NONE 0
{{range .Groups}}
{{range .}}#define {{.Name}} {{printf "%d" .Code}}
{{end}}{{end}}
#endif // NON_ASCII_KEYS_H
`))

var configTmpl = template.Must(template.New("config").Funcs(template.FuncMap{
	"key":     Literal,
	"comment": comment,
}).Parse(`#ifndef CONFIG_H
#define CONFIG_H

// Set this to true to send debug output to the serial port
// Warning: This dramatically slows down processing of inputs
const bool DEBUG = {{.Debug}};

// LED Brightnesses (in percent)
#define LED_IDLE_BRIGHTNESS {{.LEDIdleBrightness}}
#define LED_ACTIVE_BRIGHTNESS {{.LEDActiveBrightness}}

// Key bindings: up to 4 keys pressed in order, released in reverse order,
// followed by the press mode. Unused slots must be KEY_NONE.
const uint8_t keybindings[{{len .Bindings}}][5] = {
{{range .Bindings}}  { {{range .Keys}}{{key .}}, {{end}}{{.Mode.FirmwareName}} },{{comment .Label}}
{{end}}};

#endif // CONFIG_H
`))

// Literal renders a key the way the firmware headers spell it: char('x')
// for printable ASCII and the symbolic name otherwise.
func Literal(k keycode.KeyCode) string {
	if k == keycode.None {
		return "KEY_NONE"
	}
	if k.IsModifier() || k > 0x7F {
		return k.String()
	}
	switch k {
	case '\'':
		return `char('\'')`
	case '\\':
		return `char('\\')`
	}
	if k >= ' ' && k < 0x7F {
		return fmt.Sprintf("char('%c')", byte(k))
	}
	return fmt.Sprintf("%d", uint8(k))
}

func comment(label string) string {
	label = strings.Join(strings.Fields(label), " ")
	if label == "" {
		return ""
	}
	return " // " + label
}

// WriteKeysHeader writes non_ascii_keys.h: the press modes, KEY_NONE and
// every named non-ASCII key that is not a modifier.
func WriteKeysHeader(w io.Writer) error {
	var keypad, keys []keycode.NamedKey
	for _, nk := range keycode.Named {
		switch {
		case nk.Code == keycode.None, nk.Code.IsModifier():
		case strings.HasPrefix(nk.Name, "KEYPAD_"):
			keypad = append(keypad, nk)
		default:
			keys = append(keys, nk)
		}
	}
	data := struct {
		Modes  []keymap.PressMode
		Groups [][]keycode.NamedKey
	}{
		Modes:  keymap.Modes(),
		Groups: [][]keycode.NamedKey{keypad, keys},
	}
	if err := keysTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("execute keys template: %w", err)
	}
	return nil
}

// WriteConfigHeader writes config.h for cfg. cfg must validate.
func WriteConfigHeader(w io.Writer, cfg keymap.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid keymap: %w", err)
	}
	if err := configTmpl.Execute(w, cfg); err != nil {
		return fmt.Errorf("execute config template: %w", err)
	}
	return nil
}

// Generate writes both headers into outDir.
func Generate(logger *slog.Logger, outDir string, cfg keymap.Config) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{KeysHeader, WriteKeysHeader},
		{ConfigHeader, func(w io.Writer) error { return WriteConfigHeader(w, cfg) }},
	}
	for _, f := range files {
		var buf bytes.Buffer
		if err := f.write(&buf); err != nil {
			return err
		}
		out := filepath.Join(outDir, f.name)
		if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
		logger.Info("Generated header", "file", out)
	}
	return nil
}
