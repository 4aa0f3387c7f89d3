package client

import "errors"

var (
	// ErrNotStarted is returned by commands issued before Start, after
	// Shutdown, or before the first handshake completed.
	ErrNotStarted = errors.New("discord: client not started")

	ErrAlreadyStarted = errors.New("discord: client already started")

	// ErrThreadInUse is returned when another caller is already joining
	// the worker.
	ErrThreadInUse = errors.New("discord: worker is being joined elsewhere")

	// ErrThreadError is returned when the worker could not be stopped.
	ErrThreadError = errors.New("discord: worker already stopped")

	// ErrEventLoop wraps a panic recovered from the worker.
	ErrEventLoop = errors.New("discord: event loop failed")

	// ErrSubscriptionFailed is returned when Discord answers a command with
	// an ERROR event. It wraps the decoded models.ErrorEvent.
	ErrSubscriptionFailed = errors.New("discord: command rejected")
)
