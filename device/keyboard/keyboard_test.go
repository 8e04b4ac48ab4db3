package keyboard_test

import (
	"bytes"
	"encoding"
	"errors"
	"io"
	"testing"

	"github.com/Alia5/macropad/device/keyboard"
	"github.com/Alia5/macropad/internal/log"
	"github.com/Alia5/macropad/keycode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sinkFunc func(v encoding.BinaryMarshaler) error

func (f sinkFunc) WriteBinary(v encoding.BinaryMarshaler) error { return f(v) }

// captureSink decodes every written report back into an InputState.
func captureSink(t *testing.T, out *[]keyboard.InputState) keyboard.ReportSink {
	return sinkFunc(func(v encoding.BinaryMarshaler) error {
		data, err := v.MarshalBinary()
		require.NoError(t, err)
		var st keyboard.InputState
		require.NoError(t, st.UnmarshalBinary(data))
		*out = append(*out, st)
		return nil
	})
}

func TestInputStateWireFormat(t *testing.T) {
	var st keyboard.InputState
	st.Modifiers = 0x01
	st.Set(0x18)
	st.Set(0x04)

	data, err := st.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x04, 0x18}, data)

	var got keyboard.InputState
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, st, got)
	assert.Equal(t, []uint8{0x04, 0x18}, got.Keys())

	got.Clear(0x04)
	assert.False(t, got.Has(0x04))
	assert.True(t, got.Has(0x18))

	assert.ErrorIs(t, got.UnmarshalBinary([]byte{0x00}), io.ErrUnexpectedEOF)
	assert.ErrorIs(t, got.UnmarshalBinary([]byte{0x00, 0x02, 0x04}), io.ErrUnexpectedEOF)
}

func TestBuildReport(t *testing.T) {
	var st keyboard.InputState
	st.Modifiers = keycode.ModLeftShift
	st.Set(0x3A) // F1

	r := st.BuildReport()
	require.Len(t, r, keyboard.ReportSize)
	assert.Equal(t, byte(keycode.ModLeftShift), r[0])
	assert.Equal(t, byte(0), r[1])
	assert.Equal(t, byte(1<<2), r[2+0x3A/8])
}

func TestLEDState(t *testing.T) {
	var led keyboard.LEDState
	require.NoError(t, led.UnmarshalBinary([]byte{keyboard.LEDCapsLock | keyboard.LEDKana}))
	assert.True(t, led.CapsLock)
	assert.True(t, led.Kana)
	assert.False(t, led.NumLock)
	assert.Equal(t, uint8(keyboard.LEDCapsLock|keyboard.LEDKana), led.Byte())
	assert.ErrorIs(t, led.UnmarshalBinary(nil), io.ErrUnexpectedEOF)
}

func TestWriterCtrlU(t *testing.T) {
	var reports []keyboard.InputState
	w := keyboard.NewWriter(captureSink(t, &reports), nil)

	require.NoError(t, w.Press(keycode.LeftCtrl))
	require.NoError(t, w.Press(keycode.Char('u')))
	require.NoError(t, w.Release(keycode.Char('u')))
	require.NoError(t, w.Release(keycode.LeftCtrl))

	require.Len(t, reports, 4)
	assert.Equal(t, keycode.ModLeftCtrl, reports[0].Modifiers)
	assert.Empty(t, reports[0].Keys())
	assert.Equal(t, keycode.ModLeftCtrl, reports[1].Modifiers)
	assert.Equal(t, []uint8{0x18}, reports[1].Keys())
	assert.Equal(t, keycode.ModLeftCtrl, reports[2].Modifiers)
	assert.Empty(t, reports[2].Keys())
	assert.True(t, reports[3].Empty())
}

func TestWriterSharedKeysAreCounted(t *testing.T) {
	var reports []keyboard.InputState
	w := keyboard.NewWriter(captureSink(t, &reports), nil)

	require.NoError(t, w.Press(keycode.LeftCtrl))
	require.NoError(t, w.Press(keycode.LeftCtrl))
	require.NoError(t, w.Release(keycode.LeftCtrl))
	assert.Equal(t, keycode.ModLeftCtrl, w.State().Modifiers)

	require.NoError(t, w.Release(keycode.LeftCtrl))
	require.NoError(t, w.Release(keycode.LeftCtrl))
	assert.True(t, w.State().Empty())
}

func TestWriterShiftedCharacter(t *testing.T) {
	var reports []keyboard.InputState
	w := keyboard.NewWriter(captureSink(t, &reports), nil)

	require.NoError(t, w.Press(keycode.Char('?')))
	assert.Equal(t, keycode.ModLeftShift, w.State().Modifiers)
	assert.Equal(t, []uint8{0x38}, w.State().Keys())

	require.NoError(t, w.Press(keycode.F2))
	require.NoError(t, w.Reset())
	assert.True(t, w.State().Empty())
	assert.True(t, reports[len(reports)-1].Empty())
}

func TestWriterErrors(t *testing.T) {
	w := keyboard.NewWriter(sinkFunc(func(encoding.BinaryMarshaler) error { return errors.New("closed") }), nil)
	assert.ErrorContains(t, w.Press(keycode.F1), "write report: closed")
	assert.ErrorContains(t, w.Press(keycode.None), "no HID usage")
	assert.ErrorContains(t, w.Release(keycode.KeyCode(0x02)), "no HID usage")
}

func TestWriterFailedPressIsNotHeld(t *testing.T) {
	fail := true
	var reports []keyboard.InputState
	capture := captureSink(t, &reports)
	w := keyboard.NewWriter(sinkFunc(func(v encoding.BinaryMarshaler) error {
		if fail {
			fail = false
			return errors.New("closed")
		}
		return capture.WriteBinary(v)
	}), nil)

	require.Error(t, w.Press(keycode.F1))
	assert.True(t, w.State().Empty())

	require.NoError(t, w.Press(keycode.Char('a')))
	require.NoError(t, w.Release(keycode.Char('a')))
	require.Len(t, reports, 2)
	assert.Equal(t, []uint8{0x04}, reports[0].Keys())
	assert.True(t, reports[1].Empty())
	assert.True(t, w.State().Empty())
}

func TestWriterRawLog(t *testing.T) {
	var raw bytes.Buffer
	var reports []keyboard.InputState
	w := keyboard.NewWriter(captureSink(t, &reports), log.NewRaw(&raw))

	require.NoError(t, w.Press(keycode.Enter))
	assert.Contains(t, raw.String(), "pad->host 34 bytes")
}
