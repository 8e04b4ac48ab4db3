package keymap_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Alia5/macropad/keycode"
	"github.com/Alia5/macropad/keymap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeDefault(t *testing.T) {
	for _, format := range []keymap.Format{keymap.FormatJSON, keymap.FormatYAML, keymap.FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, keymap.Encode(&buf, format, keymap.Default()))

			got, err := keymap.Decode(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, keymap.Default(), got)
		})
	}
}

func TestDecodeYAML(t *testing.T) {
	in := `
debug: true
ledIdleBrightness: 5
ledActiveBrightness: 90
bindings:
  - label: Copy
    keys: [KEY_LEFT_CTRL, "'c'"]
    mode: hold
  - keys: [page_down]
    mode: rapid_fire
  - keys: []
    mode: tap_on_release
`
	cfg, err := keymap.Decode(strings.NewReader(in), keymap.FormatYAML)
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, uint8(5), cfg.LEDIdleBrightness)
	require.Len(t, cfg.Bindings, 3)
	assert.Equal(t, "Copy", cfg.Bindings[0].Label)
	assert.Equal(t, keymap.Keys(keymap.Hold, keycode.LeftCtrl, keycode.Char('c')).WithLabel("Copy"), cfg.Bindings[0])
	assert.Equal(t, keymap.Keys(keymap.RapidFire, keycode.PageDown), cfg.Bindings[1])
	assert.True(t, cfg.Bindings[2].Empty())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
		wantMsg string
	}{
		{
			name:    "too many keys",
			in:      `{"bindings":[{"keys":["a","b","c","d","e"],"mode":"hold"}]}`,
			wantErr: keymap.ErrTooManyKeys,
		},
		{
			name:    "unknown key",
			in:      `{"bindings":[{"keys":["KEY_WARP"],"mode":"hold"}]}`,
			wantErr: keymap.ErrInvalidKey,
		},
		{
			name:    "unknown mode",
			in:      `{"bindings":[{"keys":["a"],"mode":"toggle"}]}`,
			wantErr: keymap.ErrInvalidMode,
		},
		{
			name:    "gap",
			in:      `{"bindings":[{"keys":["a","KEY_NONE","b"],"mode":"hold"}]}`,
			wantErr: keymap.ErrGap,
		},
		{
			name:    "brightness",
			in:      `{"ledIdleBrightness":150,"bindings":[{"keys":["a"],"mode":"hold"}]}`,
			wantErr: keymap.ErrBrightness,
		},
		{
			name:    "empty",
			in:      `{"bindings":[]}`,
			wantErr: keymap.ErrNoBindings,
		},
		{
			name:    "unknown field",
			in:      `{"bindings":[{"keys":["a"],"mode":"hold"}],"colour":"red"}`,
			wantMsg: "unknown field",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := keymap.Decode(strings.NewReader(tt.in), keymap.FormatJSON)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"pad.json", "pad.yml", "nested/pad.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, keymap.Save(path, keymap.Default()))
			got, err := keymap.Load(path)
			require.NoError(t, err)
			assert.Equal(t, keymap.Default(), got)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := keymap.Load(filepath.Join(dir, "pad"))
	assert.ErrorContains(t, err, "no extension")

	_, err = keymap.Load(filepath.Join(dir, "pad.ini"))
	assert.ErrorContains(t, err, "unsupported format")

	_, err = keymap.Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"bindings":[{"keys":["a"],"mode":"nope"}]}`), 0o644))
	_, err = keymap.Load(bad)
	assert.ErrorContains(t, err, bad)
}

func TestSchema(t *testing.T) {
	data, err := keymap.Schema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "macropad keymap", doc["title"])
	assert.Contains(t, string(data), "tap_on_release")
}
