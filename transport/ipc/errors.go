package ipc

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/ffx64/discord-presence-go/internal/codec"
)

var (
	// ErrWouldBlock is returned when no data is available yet.
	ErrWouldBlock = errors.New("ipc: operation would block")

	// ErrConnectionClosed is returned when the peer closed the stream.
	ErrConnectionClosed = errors.New("ipc: connection closed")

	// ErrHeaderLength is returned for a short or malformed frame header.
	ErrHeaderLength = errors.New("ipc: invalid frame header length")

	// ErrNoMessage is returned when a frame carried no payload.
	ErrNoMessage = errors.New("ipc: no message")

	// ErrTimeout is returned when a read or write exceeded ReadWriteTimeout.
	ErrTimeout = errors.New("ipc: timeout")

	// ErrFrameTooLarge is returned for frames above the accepted size.
	ErrFrameTooLarge = errors.New("ipc: frame too large")

	// ErrPayloadTooLarge is returned when a payload length does not fit in 32 bits.
	ErrPayloadTooLarge = errors.New("ipc: payload length exceeds 32 bits")

	// ErrHandshakeRejected is returned when the peer answered the handshake
	// with a close frame.
	ErrHandshakeRejected = errors.New("ipc: handshake rejected")

	// ErrNoSocket is returned when no Discord IPC endpoint could be opened.
	ErrNoSocket = errors.New("ipc: no discord socket found")

	// ErrConversion is returned for bad opcodes or undecodable payloads.
	ErrConversion = codec.ErrConversion
)

// OpError is a transport-level I/O failure.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return "ipc: " + e.Op + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }

// CloseError is the payload of a close frame sent by the peer.
type CloseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *CloseError) Error() string {
	return fmt.Sprintf("discord closed the connection: %s (code %d)", e.Message, e.Code)
}

// IsWouldBlock reports whether err means the operation should be retried.
func IsWouldBlock(err error) bool {
	return errors.Is(err, ErrWouldBlock) || isWouldBlockErrno(err)
}

// IsTimeout reports whether err is a read/write timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// classify maps a raw stream error onto the package taxonomy. A deadline hit
// while polling for the next frame means no data yet; anywhere else it is a
// timeout.
func classify(op string, err error, poll bool) error {
	switch {
	case err == nil:
		return nil
	case IsWouldBlock(err):
		return ErrWouldBlock
	case isDeadline(err) && poll:
		return ErrWouldBlock
	case isDeadline(err):
		return fmt.Errorf("%w: %s", ErrTimeout, op)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrClosedPipe), errors.Is(err, net.ErrClosed):
		return fmt.Errorf("%w: %s", ErrConnectionClosed, op)
	default:
		return &OpError{Op: op, Err: err}
	}
}

func isDeadline(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || isPlatformTimeout(err) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
