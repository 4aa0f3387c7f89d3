package client

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/ffx64/discord-presence-go/transport/ipc"
)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default is slog.Default, or a debug
// logger on stderr when WithVerbose is set.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithVerbose logs every frame and payload.
func WithVerbose(v bool) Option {
	return func(c *Client) { c.verbose = v }
}

// WithDialer replaces socket discovery, mostly for tests.
func WithDialer(dial func() (ipc.Transport, error)) Option {
	return func(c *Client) { c.dial = dial }
}

// WithMeterProvider sets where connection metrics are recorded. The
// default is the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Client) { c.meterProvider = mp }
}

// WithPollInterval sets the pause between worker iterations.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}
