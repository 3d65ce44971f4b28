package wsclient

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Payload length encoding thresholds and limits from RFC 6455 section 5.2.
const (
	// maxControlPayload is the largest payload a control frame may carry
	// (RFC 6455 section 5.5).
	maxControlPayload = 125

	payloadLen7Bit  = 125 // 0-125 stored directly in the 7-bit field
	payloadLen16Bit = 126 // marker: next 2 bytes hold the length
	payloadLen64Bit = 127 // marker: next 8 bytes hold the length

	// maxFrameHeader is the worst-case header size: 2 fixed bytes, 8 bytes
	// of extended length and a 4-byte mask key.
	maxFrameHeader = 2 + 8 + 4
)

// frameHeader is the decoded form of the 2 fixed header bytes. The length
// indicator still needs resolving through resolveExtendedLength when it is
// one of the extended-length markers.
type frameHeader struct {
	fin             bool
	opcode          Opcode
	masked          bool
	lengthIndicator byte
}

// decodeHeader extracts the fixed header fields from the first 2 bytes of
// a frame. Pure bit extraction, no validation.
func decodeHeader(b0, b1 byte) frameHeader {
	return frameHeader{
		fin:             b0&0x80 != 0,
		opcode:          Opcode(b0 & 0x0F),
		masked:          b1&0x80 != 0,
		lengthIndicator: b1 & 0x7F,
	}
}

// extendedLengthSize returns how many additional length bytes follow the
// fixed header for the given 7-bit length indicator.
func extendedLengthSize(indicator byte) int {
	switch indicator {
	case payloadLen16Bit:
		return 2
	case payloadLen64Bit:
		return 8
	default:
		return 0
	}
}

// resolveExtendedLength converts the 7-bit length indicator plus any
// extended length bytes into the actual payload length. ext must hold
// exactly extendedLengthSize(indicator) bytes, big-endian per the wire
// format.
func resolveExtendedLength(indicator byte, ext []byte) uint64 {
	switch indicator {
	case payloadLen16Bit:
		return uint64(binary.BigEndian.Uint16(ext))
	case payloadLen64Bit:
		return binary.BigEndian.Uint64(ext)
	default:
		return uint64(indicator)
	}
}

// encodeFrame builds one complete client frame: header, extended length if
// the payload needs it, a fresh random mask key drawn from rnd and the
// masked payload. Every frame this client sends is masked (RFC 6455
// section 5.3). The input payload is not modified.
func encodeFrame(op Opcode, payload []byte, fin bool, rnd io.Reader) ([]byte, error) {
	if op.IsControl() && len(payload) > maxControlPayload {
		return nil, ErrControlTooLarge
	}

	var mask [4]byte
	if _, err := io.ReadFull(rnd, mask[:]); err != nil {
		return nil, fmt.Errorf("generate mask key: %w", err)
	}

	frame := make([]byte, 0, maxFrameHeader+len(payload))

	b0 := byte(op) & 0x0F
	if fin {
		b0 |= 0x80
	}
	frame = append(frame, b0)

	// Length field choice is deterministic from the payload size; the mask
	// bit is always set on the second byte.
	payloadLen := uint64(len(payload))
	switch {
	case payloadLen <= payloadLen7Bit:
		frame = append(frame, 0x80|byte(payloadLen))
	case payloadLen <= 0xFFFF:
		frame = append(frame, 0x80|payloadLen16Bit)
		frame = binary.BigEndian.AppendUint16(frame, uint16(payloadLen))
	default:
		frame = append(frame, 0x80|payloadLen64Bit)
		frame = binary.BigEndian.AppendUint64(frame, payloadLen)
	}

	frame = append(frame, mask[:]...)

	frame = append(frame, payload...)
	applyMask(frame[len(frame)-len(payload):], mask)

	return frame, nil
}

// applyMask XORs every byte with the corresponding mask key byte (cycling
// through the 4 key bytes). The operation is symmetric: the same call
// masks and unmasks. Modifies data in place.
func applyMask(data []byte, mask [4]byte) {
	for i := range data {
		data[i] ^= mask[i%4]
	}
}
