package input

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Alia5/macropad/macro"

	"github.com/karalabe/usb"
)

// HIDConfig selects a HID button box and describes its input report: a
// bitmap with one bit per button, least significant bit first, starting
// at byte Offset.
type HIDConfig struct {
	VendorID   uint16 `help:"USB vendor ID of the button box" env:"MACROPAD_HID_VID"`
	ProductID  uint16 `help:"USB product ID of the button box" env:"MACROPAD_HID_PID"`
	Interface  int    `help:"HID interface number, -1 for the first one found" default:"-1" env:"MACROPAD_HID_INTERFACE"`
	ReportSize int    `help:"Size of an input report in bytes" default:"8" env:"MACROPAD_HID_REPORT_SIZE"`
	Offset     int    `help:"Byte offset of the button bitmap within a report" default:"0" env:"MACROPAD_HID_OFFSET"`
	Buttons    int    `help:"Number of buttons in the bitmap" default:"34" env:"MACROPAD_HID_BUTTONS"`
}

// HIDDevice is the part of usb.Device the source reads from.
type HIDDevice interface {
	Read(b []byte) (int, error)
	Close() error
}

// HIDSource reads button reports from a HID device and turns bitmap
// changes into events.
type HIDSource struct {
	Config HIDConfig
	Out    chan<- macro.Event
	Logger *slog.Logger

	open func(HIDConfig) (HIDDevice, error)
}

func (s *HIDSource) String() string {
	return fmt.Sprintf("hid %04x:%04x", s.Config.VendorID, s.Config.ProductID)
}

// ListHID enumerates HID devices, optionally filtered by vendor and product
// (0 matches any).
func ListHID(vendorID, productID uint16) ([]usb.DeviceInfo, error) {
	if !usb.Supported() {
		return nil, errors.New("HID access is not supported on this platform")
	}
	return usb.EnumerateHid(vendorID, productID)
}

func openHID(cfg HIDConfig) (HIDDevice, error) {
	devices, err := ListHID(cfg.VendorID, cfg.ProductID)
	if err != nil {
		return nil, err
	}
	for _, info := range devices {
		if cfg.Interface >= 0 && info.Interface != cfg.Interface {
			continue
		}
		return info.Open()
	}
	return nil, fmt.Errorf("no HID device %04x:%04x found", cfg.VendorID, cfg.ProductID)
}

func (s *HIDSource) Serve(ctx context.Context) error {
	cfg := s.Config
	if cfg.ReportSize <= 0 || cfg.Offset < 0 || cfg.Buttons <= 0 || cfg.Offset+(cfg.Buttons+7)/8 > cfg.ReportSize {
		return fmt.Errorf("%d buttons at offset %d do not fit a %d byte report", cfg.Buttons, cfg.Offset, cfg.ReportSize)
	}
	open := s.open
	if open == nil {
		open = openHID
	}
	dev, err := open(cfg)
	if err != nil {
		return fmt.Errorf("open %s: %w", s, err)
	}
	logger := orDiscard(s.Logger)
	logger.Info("HID input opened", "device", s.String())

	var closeOnce sync.Once
	closeDev := func() { closeOnce.Do(func() { _ = dev.Close() }) }
	stop := context.AfterFunc(ctx, closeDev)
	defer stop()
	defer closeDev()

	bitmapLen := (cfg.Buttons + 7) / 8
	prev := make([]byte, bitmapLen)
	buf := make([]byte, cfg.ReportSize)
	for {
		n, err := dev.Read(buf)
		if err != nil {
			// the engine releases everything itself once ctx is done
			if ctx.Err() != nil {
				return ctx.Err()
			}
			_ = send(ctx, s.Out, DiffButtons(prev, make([]byte, bitmapLen), cfg.Buttons)...)
			return fmt.Errorf("read %s: %w", s, err)
		}
		if n < cfg.Offset+bitmapLen {
			logger.Debug("short HID report", "bytes", n)
			continue
		}
		cur := buf[cfg.Offset : cfg.Offset+bitmapLen]
		if err := send(ctx, s.Out, DiffButtons(prev, cur, cfg.Buttons)...); err != nil {
			return err
		}
		copy(prev, cur)
	}
}

// DiffButtons returns the edges between two button bitmaps, lowest button
// first. Only the first buttons bits are considered.
func DiffButtons(prev, cur []byte, buttons int) []macro.Event {
	var out []macro.Event
	for b := range buttons {
		byteIdx, bit := b/8, byte(1)<<(b%8)
		if byteIdx >= len(prev) || byteIdx >= len(cur) {
			break
		}
		was, is := prev[byteIdx]&bit != 0, cur[byteIdx]&bit != 0
		if was != is {
			out = append(out, macro.Event{Button: b, Pressed: is})
		}
	}
	return out
}
