package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Alia5/macropad/internal/configpaths"
	"github.com/Alia5/macropad/internal/firmware"
	"github.com/Alia5/macropad/keymap"
)

type Export struct {
	KeymapFlags `embed:""`
	Format      string `help:"Output format; header writes config.h and non_ascii_keys.h" enum:"json,yaml,toml,header" default:"json"`
	Output      string `short:"o" help:"Output file, or directory for headers; stdout when empty" type:"path"`
	Force       bool   `help:"Overwrite if the file already exists"`
}

func (e *Export) Run(logger *slog.Logger, out io.Writer) error {
	cfg, err := e.load()
	if err != nil {
		return err
	}

	if e.Format == "header" {
		if e.Output == "" {
			if err := firmware.WriteKeysHeader(out); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out)
			return firmware.WriteConfigHeader(out, cfg)
		}
		return firmware.Generate(logger, e.Output, cfg)
	}

	format, err := keymap.ParseFormat(e.Format)
	if err != nil {
		return err
	}
	if e.Output == "" {
		return keymap.Encode(out, format, cfg)
	}
	if !e.Force {
		if _, err := os.Stat(e.Output); err == nil {
			return fmt.Errorf("%s exists; use --force to overwrite", e.Output)
		}
	}
	if fromPath, err := keymap.FormatFromPath(e.Output); err == nil && fromPath != format {
		logger.Warn("Output extension does not match format", "file", e.Output, "format", format)
	}
	var buf bytes.Buffer
	if err := keymap.Encode(&buf, format, cfg); err != nil {
		return err
	}
	if err := configpaths.EnsureDir(e.Output); err != nil {
		return err
	}
	if err := os.WriteFile(e.Output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", e.Output, err)
	}
	logger.Info("Exported keymap", "file", e.Output, "format", format)
	return nil
}
