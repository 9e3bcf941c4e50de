package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrOversizedLength is returned when a frame declares a payload length the
// parser cannot represent or was configured to refuse.
var ErrOversizedLength = errors.New("frame payload length too large")

// FrameError describes a fatal framing condition on a connection
type FrameError struct {
	Opcode byte
	Length uint64
	Err    error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("%v (opcode=%s, length=%d)", e.Err, OpcodeName(e.Opcode), e.Length)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// Frame represents one decoded WebSocket frame
type Frame struct {
	FIN     bool
	RSV1    bool
	RSV2    bool
	RSV3    bool
	Opcode  byte
	Masked  bool
	Length  int
	MaskKey [4]byte
	Payload []byte // Unmasked
}

// IsControl reports whether the frame carries a control opcode (close, ping, pong or reserved 0xB-0xF)
func (f *Frame) IsControl() bool {
	return IsControlOpcode(f.Opcode)
}

// OpcodeString returns a human-readable opcode name
func (f *Frame) OpcodeString() string {
	return OpcodeName(f.Opcode)
}

// String returns a debug representation of the frame
func (f *Frame) String() string {
	return fmt.Sprintf("Frame{FIN=%v, Opcode=%s, Masked=%v, Length=%d}",
		f.FIN, f.OpcodeString(), f.Masked, f.Length)
}

// IsControlOpcode reports whether op is in the control range
func IsControlOpcode(op byte) bool {
	return op&0x08 != 0
}

// OpcodeName returns a human-readable name for op
func OpcodeName(op byte) string {
	switch op {
	case OpcodeContinuation:
		return "continuation"
	case OpcodeText:
		return "text"
	case OpcodeBinary:
		return "binary"
	case OpcodeClose:
		return "close"
	case OpcodePing:
		return "ping"
	case OpcodePong:
		return "pong"
	default:
		return fmt.Sprintf("unknown(0x%X)", op)
	}
}

// Mask XORs payload in place with key. Applying it twice restores the input.
func Mask(payload []byte, key [4]byte) {
	for i := range payload {
		payload[i] ^= key[i%4]
	}
}

// EncodeFrame builds the wire bytes of a single frame. When maskKey is non-nil
// the payload is masked with it and the mask bit is set, as a client would send.
// The payload slice is not modified.
func EncodeFrame(fin bool, opcode byte, payload []byte, maskKey *[4]byte) []byte {
	n := len(payload)
	frame := make([]byte, 0, MinFrameSize+extendedLength64Size+maskKeySize+n)

	b0 := opcode & opcodeMask
	if fin {
		b0 |= finBit
	}
	frame = append(frame, b0)

	var b1 byte
	if maskKey != nil {
		b1 = maskBit
	}

	switch {
	case n <= MaxDirectLength:
		frame = append(frame, b1|byte(n))
	case n <= 0xFFFF:
		frame = append(frame, b1|LengthIndicator16)
		frame = binary.BigEndian.AppendUint16(frame, uint16(n))
	default:
		frame = append(frame, b1|LengthIndicator64)
		frame = binary.BigEndian.AppendUint64(frame, uint64(n))
	}

	if maskKey == nil {
		return append(frame, payload...)
	}

	frame = append(frame, maskKey[:]...)
	start := len(frame)
	frame = append(frame, payload...)
	Mask(frame[start:], *maskKey)
	return frame
}
