package keymap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Alia5/macropad/keycode"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// Format is a keymap file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat normalizes a format name; "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// FormatFromPath picks a format by file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("cannot infer format of %q: no extension", path)
	}
	return ParseFormat(ext)
}

// File is the on-disk shape of a Config.
type File struct {
	Debug               bool          `json:"debug" yaml:"debug" toml:"debug" jsonschema:"description=Send verbose report logs"`
	LEDIdleBrightness   uint8         `json:"ledIdleBrightness" yaml:"ledIdleBrightness" toml:"ledIdleBrightness" jsonschema:"minimum=0,maximum=100,description=LED brightness while idle in percent"`
	LEDActiveBrightness uint8         `json:"ledActiveBrightness" yaml:"ledActiveBrightness" toml:"ledActiveBrightness" jsonschema:"minimum=0,maximum=100,description=LED brightness while a button is held in percent"`
	Bindings            []FileBinding `json:"bindings" yaml:"bindings" toml:"bindings" jsonschema:"minItems=1,maxItems=255"`
}

// FileBinding is one button as written in a keymap file. Keys use the
// keycode.Parse syntax and may list fewer than four entries.
type FileBinding struct {
	Label string   `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Keys  []string `json:"keys" yaml:"keys" toml:"keys" jsonschema:"maxItems=4,description=Keys pressed in order and released in reverse"`
	Mode  string   `json:"mode" yaml:"mode" toml:"mode" jsonschema:"enum=hold,enum=rapid_fire,enum=tap_on_release"`
}

// ToFile converts c to its on-disk shape. Empty slots are left out.
func (c Config) ToFile() File {
	f := File{
		Debug:               c.Debug,
		LEDIdleBrightness:   c.LEDIdleBrightness,
		LEDActiveBrightness: c.LEDActiveBrightness,
		Bindings:            make([]FileBinding, 0, len(c.Bindings)),
	}
	for _, b := range c.Bindings {
		fb := FileBinding{Label: b.Label, Mode: b.Mode.String(), Keys: []string{}}
		for _, k := range b.Keys {
			if k == keycode.None {
				continue
			}
			fb.Keys = append(fb.Keys, k.String())
		}
		f.Bindings = append(f.Bindings, fb)
	}
	return f
}

// Config converts f to a Config. A KEY_NONE entry in the middle of a key
// list is kept, so the gap shows up in validation.
func (f File) Config() (Config, error) {
	c := Config{
		Settings: Settings{
			Debug:               f.Debug,
			LEDIdleBrightness:   f.LEDIdleBrightness,
			LEDActiveBrightness: f.LEDActiveBrightness,
		},
		Bindings: make(Table, 0, len(f.Bindings)),
	}
	var errs []error
	for i, fb := range f.Bindings {
		b := Binding{Label: fb.Label}
		if len(fb.Keys) > SlotsPerBinding {
			errs = append(errs, &BindingError{i, -1, fmt.Errorf("%w: %d", ErrTooManyKeys, len(fb.Keys))})
		}
		for slot, s := range fb.Keys {
			if slot >= SlotsPerBinding {
				break
			}
			k, err := keycode.Parse(s)
			if err != nil {
				errs = append(errs, &BindingError{i, slot, fmt.Errorf("%w: %w", ErrInvalidKey, err)})
				continue
			}
			b.Keys[slot] = k
		}
		mode, err := ParsePressMode(fb.Mode)
		if err != nil {
			errs = append(errs, &BindingError{i, -1, fmt.Errorf("%w: %w", ErrInvalidMode, err)})
		}
		b.Mode = mode
		c.Bindings = append(c.Bindings, b)
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Decode reads and validates a Config from r.
func Decode(r io.Reader, format Format) (Config, error) {
	var f File
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return Config{}, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return Config{}, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatTOML:
		data, err := io.ReadAll(r)
		if err != nil {
			return Config{}, fmt.Errorf("read toml: %w", err)
		}
		if err := toml.Unmarshal(data, &f); err != nil {
			return Config{}, fmt.Errorf("decode toml: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported format: %s", format)
	}

	c, err := f.Config()
	if err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Encode writes c to w. c is not validated.
func Encode(w io.Writer, format Format, c Config) error {
	f := c.ToFile()
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(f, "", "  ")
		data = append(data, '\n')
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err = enc.Encode(f); err == nil {
			err = enc.Close()
		}
		data = buf.Bytes()
	case FormatTOML:
		data, err = toml.Marshal(f)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	_, err = w.Write(data)
	return err
}

// Load reads and validates the keymap file at path; the format follows the
// extension.
func Load(path string) (Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Config{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	c, err := Decode(f, format)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Save writes c to path, creating parent directories as needed.
func Save(path string, c Config) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, format, c); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
