// Package manager runs the connection worker: it owns the IPC transport,
// reconnects with a bounded retry budget, flushes queued requests, and
// routes incoming frames to the event registry or to the waiting caller.
package manager

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ffx64/discord-presence-go/event"
	"github.com/ffx64/discord-presence-go/internal/telemetry"
	"github.com/ffx64/discord-presence-go/transport/ipc"
)

const (
	DefaultErrorSleep   = 5 * time.Second
	DefaultPollInterval = ipc.RetryDelay

	// Unlimited disables the retry budget.
	Unlimited = -1

	outboundBuffer = 32
	inboundBuffer  = 16
)

// ErrStopped is returned by Send and Recv once the worker has exited.
var ErrStopped = errors.New("manager: worker stopped")

// Dialer opens a new transport.
type Dialer func() (ipc.Transport, error)

// Config configures a Manager.
type Config struct {
	ClientID uint64

	// ErrorSleep is the pause after a failed connect.
	ErrorSleep time.Duration

	// RetryLimit is the number of failed connects tolerated in a row before
	// the worker gives up. Negative means Unlimited.
	RetryLimit int

	// PollInterval is the pause after each connected iteration.
	PollInterval time.Duration

	Dial     Dialer
	Registry *event.Registry

	// Ready is set when the first handshake completes; Ready is only
	// dispatched on that transition.
	Ready *atomic.Bool

	Logger  *slog.Logger
	Metrics *telemetry.Metrics
}

// Request is an outbound command frame and the nonce its reply will carry.
type Request struct {
	Nonce string
	Frame ipc.Frame
}

// Reply answers a Request. Err is set when the request could not be sent.
type Reply struct {
	Nonce string
	Frame ipc.Frame
	Err   error
}

// Manager is single use: Run may be called once.
type Manager struct {
	cfg      Config
	logger   *slog.Logger
	metrics  *telemetry.Metrics
	outbound chan Request
	inbound  chan Reply
	done     chan struct{}
}

func New(cfg Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ErrorSleep <= 0 {
		cfg.ErrorSleep = DefaultErrorSleep
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Dial == nil {
		logger := cfg.Logger
		cfg.Dial = func() (ipc.Transport, error) {
			return ipc.Dial(ipc.WithLogger(logger))
		}
	}
	if cfg.Registry == nil {
		cfg.Registry = event.NewRegistry()
	}
	if cfg.Ready == nil {
		cfg.Ready = new(atomic.Bool)
	}
	return &Manager{
		cfg:      cfg,
		logger:   cfg.Logger.With(slog.String("component", "manager")),
		metrics:  cfg.Metrics,
		outbound: make(chan Request, outboundBuffer),
		inbound:  make(chan Reply, inboundBuffer),
		done:     make(chan struct{}),
	}
}

// Done is closed when Run returns.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Send queues a request for the worker.
func (m *Manager) Send(ctx context.Context, req Request) error {
	select {
	case <-m.done:
		return ErrStopped
	default:
	}
	select {
	case m.outbound <- req:
		return nil
	case <-m.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv waits for the next reply.
func (m *Manager) Recv(ctx context.Context) (Reply, error) {
	select {
	case r := <-m.inbound:
		return r, nil
	case <-m.done:
		// The worker may have delivered a reply right before exiting.
		select {
		case r := <-m.inbound:
			return r, nil
		default:
			return Reply{}, ErrStopped
		}
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

// deliver hands a reply to the waiting caller without ever blocking the
// worker.
func (m *Manager) deliver(r Reply) {
	select {
	case m.inbound <- r:
	default:
		m.logger.Warn("dropping reply, nobody is waiting", slog.String("nonce", r.Nonce))
	}
}
