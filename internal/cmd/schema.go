package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/Alia5/macropad/keycode"
	"github.com/Alia5/macropad/keymap"
)

type Schema struct{}

func (s *Schema) Run(out io.Writer) error {
	b, err := keymap.Schema()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

type Keys struct {
	Filter string `arg:"" optional:"" help:"Only list names containing this text"`
}

func (k *Keys) Run(out io.Writer) error {
	filter := strings.ToUpper(k.Filter)
	for _, name := range keycode.Names() {
		if filter != "" && !strings.Contains(name, filter) {
			continue
		}
		code, _ := keycode.Lookup(name)
		if _, err := fmt.Fprintf(out, "%-18s %3d\n", name, uint8(code)); err != nil {
			return err
		}
	}
	return nil
}
