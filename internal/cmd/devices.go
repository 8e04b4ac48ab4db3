package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Alia5/macropad/input"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

type Devices struct {
	VendorID  uint16 `help:"Only list this vendor ID"`
	ProductID uint16 `help:"Only list this product ID"`
}

func (d *Devices) Run(out io.Writer) error {
	devices, err := input.ListHID(d.VendorID, d.ProductID)
	if err != nil {
		return fmt.Errorf("enumerate HID devices: %w", err)
	}
	if len(devices) == 0 {
		_, _ = fmt.Fprintln(out, "no HID devices found")
		return nil
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("VID", "PID", "Interface", "Manufacturer", "Product", "Path").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, dev := range devices {
		t.Row(
			fmt.Sprintf("%04x", dev.VendorID),
			fmt.Sprintf("%04x", dev.ProductID),
			strconv.Itoa(dev.Interface),
			dev.Manufacturer,
			dev.Product,
			dev.Path,
		)
	}
	_, err = fmt.Fprintln(out, t.String())
	return err
}
