package wsclient

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// patternReader hands out a repeating byte pattern, giving tests
// deterministic mask keys.
type patternReader struct {
	pattern []byte
	pos     int
}

func (r *patternReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.pattern[r.pos%len(r.pattern)]
		r.pos++
	}
	return len(p), nil
}

func fixedRand() io.Reader {
	return &patternReader{pattern: []byte{0x12, 0x34, 0x56, 0x78}}
}

func TestApplyMaskRoundTrip(t *testing.T) {
	payloads := [][]byte{
		nil,
		{0x00},
		[]byte("Hello"),
		[]byte("a longer payload that spans several mask cycles..."),
		bytes.Repeat([]byte{0xFF, 0x00, 0xAA}, 100),
	}
	masks := [][4]byte{
		{0x00, 0x00, 0x00, 0x00},
		{0x12, 0x34, 0x56, 0x78},
		{0xFF, 0xFF, 0xFF, 0xFF},
		{0x01, 0x02, 0x03, 0x04},
	}

	for _, payload := range payloads {
		for _, mask := range masks {
			data := make([]byte, len(payload))
			copy(data, payload)

			applyMask(data, mask)
			applyMask(data, mask)

			if !bytes.Equal(data, payload) {
				t.Fatalf("mask round-trip altered payload: got %x, want %x", data, payload)
			}
		}
	}
}

func TestApplyMaskXORsEveryByte(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	mask := [4]byte{0x12, 0x34, 0x56, 0x78}

	applyMask(data, mask)

	want := []byte{0x12, 0x34, 0x56, 0x78, 0x12, 0x34}
	if !bytes.Equal(data, want) {
		t.Fatalf("got %x, want %x", data, want)
	}
}

func TestEncodeFrameLengthEncoding(t *testing.T) {
	tests := []struct {
		name       string
		payloadLen int
		indicator  byte
		extBytes   int
	}{
		{"empty", 0, 0, 0},
		{"max 7-bit", 125, 125, 0},
		{"min 16-bit", 126, payloadLen16Bit, 2},
		{"max 16-bit", 65535, payloadLen16Bit, 2},
		{"min 64-bit", 65536, payloadLen64Bit, 8},
		{"1 MiB", 1 << 20, payloadLen64Bit, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := bytes.Repeat([]byte{0x42}, tt.payloadLen)

			frame, err := encodeFrame(OpBinary, payload, true, fixedRand())
			if err != nil {
				t.Fatalf("encode: %v", err)
			}

			wantLen := 2 + tt.extBytes + 4 + tt.payloadLen
			if len(frame) != wantLen {
				t.Fatalf("frame length %d, want %d", len(frame), wantLen)
			}

			h := decodeHeader(frame[0], frame[1])
			if !h.fin {
				t.Fatalf("fin bit not set")
			}
			if h.opcode != OpBinary {
				t.Fatalf("opcode %v, want %v", h.opcode, OpBinary)
			}
			if !h.masked {
				t.Fatalf("mask bit not set on client frame")
			}
			if h.lengthIndicator != tt.indicator {
				t.Fatalf("length indicator %d, want %d", h.lengthIndicator, tt.indicator)
			}

			got := resolveExtendedLength(h.lengthIndicator, frame[2:2+tt.extBytes])
			if got != uint64(tt.payloadLen) {
				t.Fatalf("decoded length %d, want %d", got, tt.payloadLen)
			}
		})
	}
}

func TestEncodeFrameMasksPayload(t *testing.T) {
	payload := []byte("Hello")

	frame, err := encodeFrame(OpText, payload, true, fixedRand())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var mask [4]byte
	copy(mask[:], frame[2:6])
	if mask != [4]byte{0x12, 0x34, 0x56, 0x78} {
		t.Fatalf("mask key %x, want 12345678", mask)
	}

	masked := frame[6:]
	if bytes.Equal(masked, payload) {
		t.Fatalf("payload was not masked on the wire")
	}

	applyMask(masked, mask)
	if !bytes.Equal(masked, payload) {
		t.Fatalf("unmasked payload %q, want %q", masked, payload)
	}

	// The input buffer must stay untouched.
	if string(payload) != "Hello" {
		t.Fatalf("encode modified the caller's payload: %q", payload)
	}
}

func TestEncodeFrameFreshMaskPerFrame(t *testing.T) {
	// A real random source must produce differing keys across frames with
	// overwhelming probability.
	c := NewConn(nil)

	a, err := encodeFrame(OpText, []byte("x"), true, c.config.Rand)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, err := encodeFrame(OpText, []byte("x"), true, c.config.Rand)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if bytes.Equal(a[2:6], b[2:6]) {
		t.Fatalf("mask key reused across frames: %x", a[2:6])
	}
}

func TestEncodeFrameControlTooLarge(t *testing.T) {
	payload := bytes.Repeat([]byte{0x00}, maxControlPayload+1)

	if _, err := encodeFrame(OpPing, payload, true, fixedRand()); !errors.Is(err, ErrControlTooLarge) {
		t.Fatalf("got %v, want ErrControlTooLarge", err)
	}
}

func TestEncodeFrameClearsFinWhenFragmenting(t *testing.T) {
	frame, err := encodeFrame(OpText, []byte("frag"), false, fixedRand())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if h := decodeHeader(frame[0], frame[1]); h.fin {
		t.Fatalf("fin bit set on non-final fragment")
	}
}

func TestDecodeHeaderBits(t *testing.T) {
	tests := []struct {
		b0, b1 byte
		want   frameHeader
	}{
		{0x81, 0x05, frameHeader{fin: true, opcode: OpText, masked: false, lengthIndicator: 5}},
		{0x02, 0xFE, frameHeader{fin: false, opcode: OpBinary, masked: true, lengthIndicator: 126}},
		{0x88, 0x00, frameHeader{fin: true, opcode: OpClose, masked: false, lengthIndicator: 0}},
		{0x89, 0x7F, frameHeader{fin: true, opcode: OpPing, masked: false, lengthIndicator: 127}},
		{0x00, 0x7D, frameHeader{fin: false, opcode: OpContinuation, masked: false, lengthIndicator: 125}},
	}

	for _, tt := range tests {
		if got := decodeHeader(tt.b0, tt.b1); got != tt.want {
			t.Fatalf("decodeHeader(%#x, %#x) = %+v, want %+v", tt.b0, tt.b1, got, tt.want)
		}
	}
}

func TestResolveExtendedLength(t *testing.T) {
	if got := resolveExtendedLength(42, nil); got != 42 {
		t.Fatalf("direct indicator: got %d, want 42", got)
	}
	if got := resolveExtendedLength(payloadLen16Bit, []byte{0x01, 0x00}); got != 256 {
		t.Fatalf("16-bit length: got %d, want 256", got)
	}
	if got := resolveExtendedLength(payloadLen64Bit, []byte{0, 0, 0, 0, 0, 0x10, 0, 0}); got != 1<<20 {
		t.Fatalf("64-bit length: got %d, want %d", got, 1<<20)
	}
}

func TestOpcodeClassification(t *testing.T) {
	for _, op := range []Opcode{OpContinuation, OpText, OpBinary} {
		if op.IsControl() || !op.IsData() {
			t.Fatalf("%v misclassified", op)
		}
	}
	for _, op := range []Opcode{OpClose, OpPing, OpPong} {
		if !op.IsControl() || op.IsData() {
			t.Fatalf("%v misclassified", op)
		}
	}
}
