package keyboard

import (
	"encoding"
	"fmt"
	"sync"

	"github.com/Alia5/macropad/internal/log"
	"github.com/Alia5/macropad/keycode"
)

// ReportSink accepts encoded input states, e.g. an apiclient.DeviceStream.
type ReportSink interface {
	WriteBinary(v encoding.BinaryMarshaler) error
}

// Writer turns key transitions into keyboard reports.
//
// Usages and modifier bits are reference counted: when two buttons both
// hold ctrl, ctrl stays down until both let go. A report is written after
// every transition, including ones that leave the report unchanged, so
// repeated taps of the same key are always visible to the host.
type Writer struct {
	mu     sync.Mutex
	sink   ReportSink
	raw    log.RawLogger
	usages [256]int
	mods   [8]int
	state  InputState
}

// NewWriter creates a Writer. raw may be nil.
func NewWriter(sink ReportSink, raw log.RawLogger) *Writer {
	if raw == nil {
		raw = log.NewRaw(nil)
	}
	return &Writer{sink: sink, raw: raw}
}

// Press implements macro.Keyboard. If the report cannot be written the
// key is not counted as held.
func (w *Writer) Press(k keycode.KeyCode) error {
	usage, mods, ok := k.HID()
	if !ok {
		return fmt.Errorf("key %s has no HID usage", k)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.count(usage, mods, 1)
	if err := w.flush(); err != nil {
		w.count(usage, mods, -1)
		w.state = w.build()
		return err
	}
	return nil
}

// Release implements macro.Keyboard. Releasing a key that is not held is a
// no-op apart from the report write.
func (w *Writer) Release(k keycode.KeyCode) error {
	usage, mods, ok := k.HID()
	if !ok {
		return fmt.Errorf("key %s has no HID usage", k)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.count(usage, mods, -1)
	return w.flush()
}

// Reset releases everything and writes an empty report.
func (w *Writer) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.usages = [256]int{}
	w.mods = [8]int{}
	return w.flush()
}

// State returns the last report written.
func (w *Writer) State() InputState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// count adds delta to the usage and modifier counters, never going below
// zero.
func (w *Writer) count(usage, mods uint8, delta int) {
	if usage != 0 {
		w.usages[usage] = max(w.usages[usage]+delta, 0)
	}
	for bit := range 8 {
		if mods&(1<<bit) != 0 {
			w.mods[bit] = max(w.mods[bit]+delta, 0)
		}
	}
}

func (w *Writer) build() InputState {
	var st InputState
	for usage, n := range w.usages {
		if n > 0 {
			st.Set(uint8(usage))
		}
	}
	for bit, n := range w.mods {
		if n > 0 {
			st.Modifiers |= 1 << bit
		}
	}
	return st
}

func (w *Writer) flush() error {
	st := w.build()
	w.state = st

	w.raw.Log(false, st.BuildReport())
	if err := w.sink.WriteBinary(&st); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
