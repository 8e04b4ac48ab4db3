package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Alia5/macropad/keymap"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

type Show struct {
	KeymapFlags `embed:""`
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	emptyStyle  = cellStyle.Faint(true)
)

func (s *Show) Run(out io.Writer) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "debug=%t  led idle=%d%%  led active=%d%%\n",
		cfg.Debug, cfg.LEDIdleBrightness, cfg.LEDActiveBrightness)
	_, _ = fmt.Fprintln(out, renderTable(cfg.Bindings))
	return nil
}

func describe(b keymap.Binding) string {
	keys := b.PressOrder()
	if len(keys) == 0 {
		return "(nothing)"
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, " + ")
}

func renderTable(bindings keymap.Table) string {
	rows := make([][]string, 0, len(bindings))
	for i, b := range bindings {
		rows = append(rows, []string{strconv.Itoa(i), b.Label, b.Mode.String(), describe(b)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Label", "Mode", "Keys").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(bindings) && bindings[row].Empty():
				return emptyStyle
			}
			return cellStyle
		})
	return t.String()
}
