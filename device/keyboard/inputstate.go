package keyboard

import (
	"io"
)

// InputState is one keyboard report: the held modifiers and a 256-bit map of
// held HID usages (full N-key rollover).
type InputState struct {
	Modifiers uint8     // bit 0-7: LCtrl, LShift, LAlt, LGui, RCtrl, RShift, RAlt, RGui
	KeyBitmap [32]uint8 // 256 bits for HID usage codes 0x00-0xFF
}

// Set marks usage as held.
func (st *InputState) Set(usage uint8) {
	st.KeyBitmap[usage/8] |= 1 << (usage % 8)
}

// Clear marks usage as released.
func (st *InputState) Clear(usage uint8) {
	st.KeyBitmap[usage/8] &^= 1 << (usage % 8)
}

// Has reports whether usage is held.
func (st InputState) Has(usage uint8) bool {
	return st.KeyBitmap[usage/8]&(1<<(usage%8)) != 0
}

// Keys returns the held usages in ascending order.
func (st InputState) Keys() []uint8 {
	var keys []uint8
	for i := 0; i < 256; i++ {
		if st.Has(uint8(i)) {
			keys = append(keys, uint8(i))
		}
	}
	return keys
}

// Empty reports whether nothing is held.
func (st InputState) Empty() bool {
	return st == InputState{}
}

// BuildReport encodes st as the 34-byte HID input report.
//
//	Byte 0: Modifiers (8 bits)
//	Byte 1: Reserved (0x00)
//	Bytes 2-33: Key bitmap (256 bits, 32 bytes)
func (st InputState) BuildReport() []byte {
	b := make([]byte, ReportSize)
	b[0] = st.Modifiers
	copy(b[2:], st.KeyBitmap[:])
	return b
}

// MarshalBinary encodes st in the VIIPER stream format.
//
//	Byte 0: Modifiers
//	Byte 1: Key count
//	Bytes 2+: HID usages of held keys
func (st *InputState) MarshalBinary() ([]byte, error) {
	keys := st.Keys()
	b := make([]byte, 2+len(keys))
	b[0] = st.Modifiers
	b[1] = uint8(len(keys))
	copy(b[2:], keys)
	return b, nil
}

// UnmarshalBinary decodes the VIIPER stream format into st.
func (st *InputState) UnmarshalBinary(data []byte) error {
	if len(data) < 2 {
		return io.ErrUnexpectedEOF
	}
	count := int(data[1])
	if len(data) < 2+count {
		return io.ErrUnexpectedEOF
	}
	*st = InputState{Modifiers: data[0]}
	for _, usage := range data[2 : 2+count] {
		st.Set(usage)
	}
	return nil
}

// LEDState is the host's LED output report.
type LEDState struct {
	NumLock    bool
	CapsLock   bool
	ScrollLock bool
	Compose    bool
	Kana       bool
}

// UnmarshalBinary decodes a 1-byte LED bitmask.
func (st *LEDState) UnmarshalBinary(data []byte) error {
	if len(data) < 1 {
		return io.ErrUnexpectedEOF
	}
	b := data[0]
	st.NumLock = b&LEDNumLock != 0
	st.CapsLock = b&LEDCapsLock != 0
	st.ScrollLock = b&LEDScrollLock != 0
	st.Compose = b&LEDCompose != 0
	st.Kana = b&LEDKana != 0
	return nil
}

// Byte encodes st back to its bitmask.
func (st LEDState) Byte() uint8 {
	var b uint8
	if st.NumLock {
		b |= LEDNumLock
	}
	if st.CapsLock {
		b |= LEDCapsLock
	}
	if st.ScrollLock {
		b |= LEDScrollLock
	}
	if st.Compose {
		b |= LEDCompose
	}
	if st.Kana {
		b |= LEDKana
	}
	return b
}
