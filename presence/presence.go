// Package presence keeps a Discord rich presence in sync with an
// application-owned State.
package presence

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ffx64/discord-presence-go/client"
	"github.com/ffx64/discord-presence-go/event"
	"github.com/ffx64/discord-presence-go/models"
)

const (
	DefaultInterval = time.Second

	clearTimeout = 2 * time.Second
)

// ErrClientStopped is returned by Run when the client's worker gave up.
var ErrClientStopped = errors.New("presence: discord client stopped")

type Config struct {
	ClientID uint64
	// ShowTime stamps a start timestamp on activities that carry none, so
	// Discord shows the elapsed time.
	ShowTime bool
	// Interval is how often State is checked for changes.
	Interval time.Duration
}

// Client is the part of client.Client the adapter drives.
type Client interface {
	Start() error
	Shutdown() error
	IsReady() bool
	Done() <-chan struct{}
	OnConnected(fn event.Handler) *event.Handle
	SetActivity(ctx context.Context, a models.Activity) (*models.Payload[models.Activity], error)
	ClearActivity(ctx context.Context) (*models.Payload[models.Activity], error)
}

// Adapter forwards State changes to Discord.
type Adapter struct {
	cfg    Config
	client Client
	state  *State
	logger *slog.Logger

	started uint64
	sent    uint64
	// resend forces the next sync after Discord reconnected, since a new
	// Discord process starts without our activity.
	resend atomic.Bool
}

// New builds an adapter around a new client for cfg.ClientID.
func New(cfg Config, state *State, logger *slog.Logger, opts ...client.Option) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]client.Option{client.WithLogger(logger)}, opts...)
	return NewWithClient(cfg, client.New(cfg.ClientID, opts...), state, logger)
}

func NewWithClient(cfg Config, c Client, state *State, logger *slog.Logger) *Adapter {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		cfg:     cfg,
		client:  c,
		state:   state,
		logger:  logger.With(slog.String("component", "presence")),
		started: uint64(time.Now().Unix()),
	}
}

// Run starts the client and syncs State until ctx is done, then clears the
// presence and shuts the client down. Failed updates are logged and retried
// on the next tick.
func (a *Adapter) Run(ctx context.Context) error {
	if err := a.client.Start(); err != nil && !errors.Is(err, client.ErrAlreadyStarted) {
		return err
	}
	defer a.stop()

	h := a.client.OnConnected(func(event.Context) { a.resend.Store(true) })
	defer h.Remove()

	ticker := time.NewTicker(a.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := a.flush(ctx); err != nil && ctx.Err() == nil {
			a.logger.Warn("failed to update presence", slog.Any("error", err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-a.client.Done():
			return ErrClientStopped
		case <-ticker.C:
		}
	}
}

// flush sends the current State if it changed since the last successful
// send. It does nothing until the client is ready.
func (a *Adapter) flush(ctx context.Context) error {
	if !a.client.IsReady() {
		return nil
	}
	activity, version := a.state.Snapshot()
	force := a.resend.Swap(false)
	if version == a.sent && !force {
		return nil
	}

	var err error
	if activity.IsEmpty() {
		_, err = a.client.ClearActivity(ctx)
	} else {
		if a.cfg.ShowTime && activity.Timestamps == nil {
			activity.Timestamps = &models.Timestamps{Start: a.started}
		}
		_, err = a.client.SetActivity(ctx, activity)
	}
	if err != nil {
		if force {
			a.resend.Store(true)
		}
		return err
	}
	a.sent = version
	a.logger.Debug("presence updated", slog.Uint64("version", version))
	return nil
}

func (a *Adapter) stop() {
	if a.client.IsReady() {
		ctx, cancel := context.WithTimeout(context.Background(), clearTimeout)
		if _, err := a.client.ClearActivity(ctx); err != nil {
			a.logger.Warn("failed to clear presence", slog.Any("error", err))
		}
		cancel()
	}
	if err := a.client.Shutdown(); err != nil && !errors.Is(err, client.ErrNotStarted) {
		a.logger.Error("discord client shutdown failed", slog.Any("error", err))
	}
}
