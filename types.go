package wsclient

// State is the lifecycle state of a connection. All public operations
// check it before touching the socket; it is the single source of truth
// for what is legal.
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Opcode is the 4-bit frame type tag from RFC 6455 section 5.2.
type Opcode byte

const (
	OpContinuation Opcode = 0x0
	OpText         Opcode = 0x1
	OpBinary       Opcode = 0x2
	OpClose        Opcode = 0x8
	OpPing         Opcode = 0x9
	OpPong         Opcode = 0xA
)

// IsControl reports whether the opcode is a control frame (0x8-0xF).
// Control frames may be interleaved between the fragments of a data
// message and carry at most 125 bytes of payload.
func (op Opcode) IsControl() bool {
	return op&0x08 != 0
}

// IsData reports whether the opcode is a data frame.
func (op Opcode) IsData() bool {
	return op == OpContinuation || op == OpText || op == OpBinary
}

func (op Opcode) String() string {
	switch op {
	case OpContinuation:
		return "continuation"
	case OpText:
		return "text"
	case OpBinary:
		return "binary"
	case OpClose:
		return "close"
	case OpPing:
		return "ping"
	case OpPong:
		return "pong"
	default:
		return "reserved"
	}
}

// Close status codes from RFC 6455 section 7.4.1. Only the codes this
// client sends or synthesizes are named; anything else is passed through
// numerically.
const (
	CloseNormalClosure    = 1000
	CloseGoingAway        = 1001
	CloseProtocolError    = 1002
	CloseNoStatusReceived = 1005
	CloseAbnormalClosure  = 1006
)
