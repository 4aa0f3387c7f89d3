package ipc

import (
	"fmt"
	"time"
)

type OpCode uint32

const (
	OpHandshake OpCode = 0
	OpFrame     OpCode = 1
	OpClose     OpCode = 2
	OpPing      OpCode = 3
	OpPong      OpCode = 4
)

func (op OpCode) Valid() bool {
	return op <= OpPong
}

func (op OpCode) String() string {
	switch op {
	case OpHandshake:
		return "HANDSHAKE"
	case OpFrame:
		return "FRAME"
	case OpClose:
		return "CLOSE"
	case OpPing:
		return "PING"
	case OpPong:
		return "PONG"
	default:
		return fmt.Sprintf("OpCode(%d)", uint32(op))
	}
}

const (
	// HeaderSize is the encoded size of a Header.
	HeaderSize = 8

	// MaxFrameSize bounds an outgoing frame, header included.
	MaxFrameSize = 64 * 1024

	// maxReceiveSize bounds the payload length accepted from the peer.
	maxReceiveSize = 10 * 1024 * 1024

	// ReadWriteTimeout is one second above Discord's 15s rate-limit window.
	ReadWriteTimeout = 16 * time.Second

	// RetryDelay is the pause between attempts while the stream would block.
	RetryDelay = 500 * time.Millisecond
)

// Header precedes every payload on the wire.
type Header struct {
	OpCode OpCode
	Length uint32
}

// Frame is one opcode-tagged unit of wire data.
type Frame struct {
	OpCode  OpCode
	Payload string
}
