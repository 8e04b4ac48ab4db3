package cmd

import (
	"fmt"

	"github.com/Alia5/macropad/internal/log"
	"github.com/Alia5/macropad/keymap"
)

// CLI is the root of the command line. Every flag can also come from the
// config file or a MACROPAD_* environment variable.
type CLI struct {
	ConfigPath string     `name:"config" help:"Config file (json, yaml or toml)" type:"path" env:"MACROPAD_CONFIG"`
	Log        log.Config `embed:"" prefix:"log."`

	Validate Validate      `cmd:"" help:"Check a keymap and report duplicate bindings"`
	Show     Show          `cmd:"" help:"Print a keymap as a table"`
	Export   Export        `cmd:"" help:"Write a keymap as json, yaml, toml or firmware headers"`
	Schema   Schema        `cmd:"" help:"Print the JSON Schema of keymap files"`
	Keys     Keys          `cmd:"" help:"List every key name"`
	Run      Run           `cmd:"" help:"Emulate the pad: drive a VIIPER virtual keyboard from button events"`
	Devices  Devices       `cmd:"" help:"List HID devices usable as a button source"`
	Config   ConfigCommand `cmd:"" help:"Manage config files"`
}

// KeymapFlags selects the keymap a command works on.
type KeymapFlags struct {
	Keymap string `help:"Keymap file (json, yaml or toml); the built-in table when empty" type:"path" env:"MACROPAD_KEYMAP"`
}

func (k KeymapFlags) load() (keymap.Config, error) {
	if k.Keymap == "" {
		return keymap.Default(), nil
	}
	cfg, err := keymap.Load(k.Keymap)
	if err != nil {
		return keymap.Config{}, fmt.Errorf("load keymap: %w", err)
	}
	return cfg, nil
}

func (k KeymapFlags) source() string {
	if k.Keymap == "" {
		return "built-in"
	}
	return k.Keymap
}
