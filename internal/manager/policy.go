package manager

import (
	"errors"

	"github.com/ffx64/discord-presence-go/transport/ipc"
)

// ErrInvalidClientID is returned for a zero client id.
var ErrInvalidClientID = errors.New("manager: invalid client id")

// nonRecoverable lists connect failures that retrying cannot fix: Discord
// refused the client id or answered with something that is not the
// protocol.
var nonRecoverable = []error{
	ErrInvalidClientID,
	ipc.ErrHandshakeRejected,
	ipc.ErrConversion,
}

// Recoverable reports whether a failed connect should be retried.
func Recoverable(err error) bool {
	for _, target := range nonRecoverable {
		if errors.Is(err, target) {
			return false
		}
	}
	return true
}

type action int

const (
	// actionRetry keeps the connection and pauses before the next iteration.
	actionRetry action = iota
	// actionContinue keeps the connection and loops immediately.
	actionContinue
	// actionDisconnect drops the connection.
	actionDisconnect
	// actionLog keeps the connection after logging the error.
	actionLog
)

// classify decides what a connected iteration does with err. Errors that
// leave the byte stream misaligned drop the connection like any I/O error.
func classify(err error) action {
	var opErr *ipc.OpError
	switch {
	case errors.Is(err, ipc.ErrWouldBlock):
		return actionRetry
	case errors.Is(err, ipc.ErrConnectionClosed),
		errors.Is(err, ipc.ErrHeaderLength),
		errors.Is(err, ipc.ErrFrameTooLarge),
		errors.As(err, &opErr):
		return actionDisconnect
	case errors.Is(err, ipc.ErrTimeout):
		return actionContinue
	default:
		return actionLog
	}
}
