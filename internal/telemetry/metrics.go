// Package telemetry defines the OpenTelemetry instruments recorded by the
// connection manager.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const scope = "github.com/ffx64/discord-presence-go"

// Metrics groups the manager's counters. A nil *Metrics records nothing.
type Metrics struct {
	framesSent      metric.Int64Counter
	framesReceived  metric.Int64Counter
	connectAttempts metric.Int64Counter
	connectFailures metric.Int64Counter
	disconnects     metric.Int64Counter
	events          metric.Int64Counter
}

// New creates the instruments on mp, or on the global provider when mp is
// nil.
func New(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(scope)

	var (
		m   Metrics
		err error
	)
	if m.framesSent, err = meter.Int64Counter("discord.ipc.frames.sent",
		metric.WithDescription("Frames written to the IPC socket")); err != nil {
		return nil, err
	}
	if m.framesReceived, err = meter.Int64Counter("discord.ipc.frames.received",
		metric.WithDescription("Frames read from the IPC socket")); err != nil {
		return nil, err
	}
	if m.connectAttempts, err = meter.Int64Counter("discord.ipc.connect.attempts",
		metric.WithDescription("Connect and handshake attempts")); err != nil {
		return nil, err
	}
	if m.connectFailures, err = meter.Int64Counter("discord.ipc.connect.failures",
		metric.WithDescription("Failed connect and handshake attempts")); err != nil {
		return nil, err
	}
	if m.disconnects, err = meter.Int64Counter("discord.ipc.disconnects",
		metric.WithDescription("Established connections that were lost")); err != nil {
		return nil, err
	}
	if m.events, err = meter.Int64Counter("discord.ipc.events.dispatched",
		metric.WithDescription("Events dispatched to the registry")); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Metrics) FrameSent(ctx context.Context) {
	if m != nil {
		m.framesSent.Add(ctx, 1)
	}
}

func (m *Metrics) FrameReceived(ctx context.Context) {
	if m != nil {
		m.framesReceived.Add(ctx, 1)
	}
}

func (m *Metrics) ConnectAttempt(ctx context.Context) {
	if m != nil {
		m.connectAttempts.Add(ctx, 1)
	}
}

// ConnectFailure records a failed attempt and whether it will be retried.
func (m *Metrics) ConnectFailure(ctx context.Context, recoverable bool) {
	if m != nil {
		m.connectFailures.Add(ctx, 1, metric.WithAttributes(attribute.Bool("recoverable", recoverable)))
	}
}

func (m *Metrics) Disconnect(ctx context.Context) {
	if m != nil {
		m.disconnects.Add(ctx, 1)
	}
}

func (m *Metrics) EventDispatched(ctx context.Context, event string) {
	if m != nil {
		m.events.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event)))
	}
}
