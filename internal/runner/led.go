package runner

import (
	"bufio"
	"context"
	"encoding"
	"log/slog"

	"github.com/Alia5/macropad/device/keyboard"

	"github.com/thejerf/suture/v4"
)

// FeedbackReader is the read half of a device stream.
type FeedbackReader interface {
	StartReading(ctx context.Context, chSize int, decode func(r *bufio.Reader) (encoding.BinaryUnmarshaler, error)) (<-chan encoding.BinaryUnmarshaler, <-chan error)
}

// LEDMonitor logs the LED state the host sets on the virtual keyboard.
// A stream can only be read once, so it is never restarted.
type LEDMonitor struct {
	Stream FeedbackReader
	Logger *slog.Logger
	// OnChange, if set, sees every LED report.
	OnChange func(keyboard.LEDState)
}

func (m *LEDMonitor) String() string { return "led monitor" }

func decodeLED(r *bufio.Reader) (encoding.BinaryUnmarshaler, error) {
	b, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	led := new(keyboard.LEDState)
	if err := led.UnmarshalBinary([]byte{b}); err != nil {
		return nil, err
	}
	return led, nil
}

func (m *LEDMonitor) Serve(ctx context.Context) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	msgs, errs := m.Stream.StartReading(ctx, 4, decodeLED)
	for msg := range msgs {
		led := msg.(*keyboard.LEDState)
		logger.Info("Keyboard LEDs",
			"num_lock", led.NumLock,
			"caps_lock", led.CapsLock,
			"scroll_lock", led.ScrollLock,
		)
		if m.OnChange != nil {
			m.OnChange(*led)
		}
	}
	if err := <-errs; err != nil && ctx.Err() == nil {
		logger.Debug("LED feedback ended", "error", err)
	}
	return suture.ErrDoNotRestart
}
