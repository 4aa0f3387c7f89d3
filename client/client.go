// Package client talks to a running Discord desktop client over its local
// IPC socket.
//
// A Client does nothing until Start is called. Start spawns one worker
// goroutine that owns the connection, reconnects when Discord goes away,
// and dispatches incoming events to the callbacks registered with OnEvent
// and its typed wrappers. Commands such as SetActivity block until Discord
// answers and fail with ErrNotStarted until the first handshake completed.
//
//	c := client.New(appID)
//	if err := c.Start(); err != nil {
//		return err
//	}
//	defer c.Shutdown()
//	if _, err := c.BlockUntilEvent(ctx, models.EventReady); err != nil {
//		return err
//	}
//	_, err := c.SetActivity(ctx, *models.NewActivity().WithState("Editing"))
package client

import (
	"errors"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/ffx64/discord-presence-go/event"
	"github.com/ffx64/discord-presence-go/internal/logging"
	"github.com/ffx64/discord-presence-go/internal/manager"
	"github.com/ffx64/discord-presence-go/internal/telemetry"
	"github.com/ffx64/discord-presence-go/transport/ipc"
)

// Client is safe for concurrent use. It is single use: once shut down it
// cannot be started again.
type Client struct {
	clientID      uint64
	errorSleep    time.Duration
	retryLimit    int
	pollInterval  time.Duration
	dial          func() (ipc.Transport, error)
	logger        *slog.Logger
	verbose       bool
	meterProvider metric.MeterProvider

	registry *event.Registry
	ready    atomic.Bool

	mu      sync.Mutex
	manager *manager.Manager
	thread  *Thread

	// execMu keeps one command in flight.
	execMu sync.Mutex
}

// New returns a client that retries failed connects forever, five
// seconds apart.
func New(clientID uint64, opts ...Option) *Client {
	return NewWithErrorConfig(clientID, manager.DefaultErrorSleep, manager.Unlimited, opts...)
}

// NewWithErrorConfig returns a client that sleeps errorSleep after a failed
// connect and gives up after retryLimit consecutive failures. A negative
// retryLimit retries forever.
func NewWithErrorConfig(clientID uint64, errorSleep time.Duration, retryLimit int, opts ...Option) *Client {
	c := &Client{
		clientID:   clientID,
		errorSleep: errorSleep,
		retryLimit: retryLimit,
		registry:   event.NewRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
		if c.verbose {
			if l, err := logging.New(logging.Options{Level: "debug", Writer: os.Stderr}); err == nil {
				c.logger = l
			}
		}
	}
	return c
}

// Start spawns the worker. It does not wait for the connection; use
// BlockUntilEvent with models.EventReady for that.
func (c *Client) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.thread != nil {
		return ErrAlreadyStarted
	}

	metrics, err := telemetry.New(c.meterProvider)
	if err != nil {
		c.logger.Warn("connection metrics disabled", slog.Any("error", err))
	}
	cfg := manager.Config{
		ClientID:     c.clientID,
		ErrorSleep:   c.errorSleep,
		RetryLimit:   c.retryLimit,
		PollInterval: c.pollInterval,
		Registry:     c.registry,
		Ready:        &c.ready,
		Logger:       c.logger,
		Metrics:      metrics,
	}
	if c.dial != nil {
		cfg.Dial = c.dial
	}

	c.manager = manager.New(cfg)
	c.thread = spawn(c.manager.Run, c.logger)
	c.logger.Debug("discord client started", slog.Uint64("client_id", c.clientID))
	return nil
}

// Shutdown stops the worker, clears readiness and waits for the worker to
// exit. It uses up the worker handle, so it fails with ErrNotStarted before
// Start and once Shutdown or BlockOn has returned or the handle was persisted.
func (c *Client) Shutdown() error {
	t := c.Thread()
	if t == nil || t.consumed.Load() {
		return ErrNotStarted
	}
	if err := t.signal(); err != nil {
		return ErrNotStarted
	}
	c.ready.Store(false)
	err := t.wait()
	t.consumed.Store(true)
	return err
}

// BlockOn waits for the worker to exit on its own, which only happens when
// connecting failed for good or another goroutine called Shutdown. Like
// Shutdown it uses up the worker handle.
func (c *Client) BlockOn() error {
	t := c.Thread()
	if t == nil || t.consumed.Load() {
		return ErrNotStarted
	}
	err := t.Join()
	switch {
	case errors.Is(err, ErrThreadInUse):
		return err
	case errors.Is(err, ErrThreadError):
		return ErrNotStarted
	}
	t.consumed.Store(true)
	return err
}

// Thread returns the worker handle, or nil before Start.
func (c *Client) Thread() *Thread {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.thread
}

// IsReady reports whether a handshake has completed since Start.
func (c *Client) IsReady() bool {
	return c.ready.Load()
}

func (c *Client) currentManager() *manager.Manager {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manager
}

// Done is closed when the worker exits. It is nil before Start.
func (c *Client) Done() <-chan struct{} {
	if t := c.Thread(); t != nil {
		return t.Done()
	}
	return nil
}
