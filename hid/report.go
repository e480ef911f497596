package hid

import (
	"io"
)

// ReportSize is the length of an encoded keyboard input report.
const ReportSize = 34

// InputState is the keyboard state a report is built from.
// Internally uses a 256-bit bitmap for N-key rollover support.
type InputState struct {
	Modifiers uint8     // bit 0-7: LCtrl, LShift, LAlt, LGui, RCtrl, RShift, RAlt, RGui
	KeyBitmap [32]uint8 // 256 bits for HID usage codes 0x00-0xFF
}

// Apply folds a into the state and reports whether anything changed.
// Modifier usages set modifier bits; extended usages are ignored.
func (st *InputState) Apply(a Action) bool {
	before := *st
	switch a.Kind {
	case ActionKeyDown:
		if bit := ModifierBit(a.Code); bit != 0 {
			st.Modifiers |= bit
		} else if !IsExtended(a.Code) {
			st.KeyBitmap[a.Code/8] |= 1 << (a.Code % 8)
		}
	case ActionKeyUp:
		if bit := ModifierBit(a.Code); bit != 0 {
			st.Modifiers &^= bit
		} else if !IsExtended(a.Code) {
			st.KeyBitmap[a.Code/8] &^= 1 << (a.Code % 8)
		}
	case ActionModsDown:
		st.Modifiers |= a.Mods
	case ActionModsUp:
		st.Modifiers &^= a.Mods
	}
	return before != *st
}

// Pressed reports whether usage code is set in the key bitmap.
func (st *InputState) Pressed(code uint8) bool {
	return st.KeyBitmap[code/8]&(1<<(code%8)) != 0
}

// Keys returns the pressed usages in ascending order.
func (st *InputState) Keys() []uint8 {
	var keys []uint8
	for i := 0; i < 256; i++ {
		if st.KeyBitmap[i/8]&(1<<uint(i%8)) != 0 {
			keys = append(keys, uint8(i))
		}
	}
	return keys
}

// PutReport encodes the state into dst without allocating.
//
// Report layout (34 bytes):
//
//	Byte 0: Modifiers (8 bits)
//	Byte 1: Reserved (0x00)
//	Bytes 2-33: Key bitmap (256 bits, 32 bytes)
func (st *InputState) PutReport(dst *[ReportSize]byte) {
	dst[0] = st.Modifiers
	dst[1] = 0x00
	copy(dst[2:], st.KeyBitmap[:])
}

// BuildReport encodes the state into a freshly allocated report.
func (st InputState) BuildReport() []byte {
	var b [ReportSize]byte
	st.PutReport(&b)
	return b[:]
}

// MarshalBinary encodes InputState to variable-length wire format.
//
// Wire format:
//
//	Byte 0: Modifiers
//	Byte 1: Key count
//	Bytes 2+: Key codes (HID usage codes of pressed keys)
func (st *InputState) MarshalBinary() ([]byte, error) {
	keys := st.Keys()
	b := make([]byte, 2+len(keys))
	b[0] = st.Modifiers
	b[1] = uint8(len(keys))
	copy(b[2:], keys)
	return b, nil
}

// UnmarshalBinary decodes the variable-length wire format into InputState.
func (st *InputState) UnmarshalBinary(data []byte) error {
	if len(data) < 2 {
		return io.ErrUnexpectedEOF
	}
	keyCount := int(data[1])
	if len(data) < 2+keyCount {
		return io.ErrUnexpectedEOF
	}

	st.Modifiers = data[0]
	st.KeyBitmap = [32]uint8{}
	for _, code := range data[2 : 2+keyCount] {
		st.KeyBitmap[code/8] |= 1 << (code % 8)
	}
	return nil
}

// Report is a Sink that keeps the current InputState and hands every changed
// report to a callback. The buffer passed to the callback is reused.
type Report struct {
	state    InputState
	buf      [ReportSize]byte
	onReport func(report []byte)
}

// NewReport returns a Report calling onReport after each state change.
// onReport may be nil.
func NewReport(onReport func(report []byte)) *Report {
	return &Report{onReport: onReport}
}

// Emit implements Sink.
func (r *Report) Emit(a Action) {
	if !r.state.Apply(a) {
		return
	}
	if r.onReport != nil {
		r.state.PutReport(&r.buf)
		r.onReport(r.buf[:])
	}
}

// State returns a copy of the current state.
func (r *Report) State() InputState {
	return r.state
}

// Reset clears all keys and modifiers, emitting an empty report if anything
// was held.
func (r *Report) Reset() {
	if r.state == (InputState{}) {
		return
	}
	r.state = InputState{}
	if r.onReport != nil {
		r.state.PutReport(&r.buf)
		r.onReport(r.buf[:])
	}
}
