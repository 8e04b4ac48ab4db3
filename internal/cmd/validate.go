package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/Alia5/macropad/keymap"
)

type Validate struct {
	KeymapFlags `embed:""`
	Strict      bool `help:"Treat duplicate bindings as an error"`
}

// ErrDuplicates is returned by validate --strict.
var ErrDuplicates = errors.New("duplicate bindings")

func (v *Validate) Run(out io.Writer) error {
	cfg, err := v.load()
	if err != nil {
		return err
	}

	dups := cfg.Bindings.Duplicates()
	for _, group := range dups {
		labels := make([]string, 0, len(group))
		for _, btn := range group {
			labels = append(labels, buttonName(cfg.Bindings, btn))
		}
		_, _ = fmt.Fprintf(out, "warning: buttons %v share %s\n", labels, describe(cfg.Bindings[group[0]]))
	}
	if v.Strict && len(dups) > 0 {
		return fmt.Errorf("%w: %d groups", ErrDuplicates, len(dups))
	}
	_, _ = fmt.Fprintf(out, "%s: %d buttons OK\n", v.source(), len(cfg.Bindings))
	return nil
}

func buttonName(t keymap.Table, btn int) string {
	if t[btn].Label != "" {
		return fmt.Sprintf("%d (%s)", btn, t[btn].Label)
	}
	return fmt.Sprint(btn)
}
