package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/ffx64/discord-presence-go/internal/telemetry"
)

func TestCountersAreRecorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := telemetry.New(mp)
	require.NoError(t, err)

	ctx := context.Background()
	m.FrameSent(ctx)
	m.FrameSent(ctx)
	m.FrameReceived(ctx)
	m.ConnectAttempt(ctx)
	m.ConnectFailure(ctx, true)
	m.Disconnect(ctx)
	m.EventDispatched(ctx, "READY")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			sum, ok := md.Data.(metricdata.Sum[int64])
			require.True(t, ok, md.Name)
			for _, dp := range sum.DataPoints {
				totals[md.Name] += dp.Value
			}
		}
	}

	assert.Equal(t, int64(2), totals["discord.ipc.frames.sent"])
	assert.Equal(t, int64(1), totals["discord.ipc.frames.received"])
	assert.Equal(t, int64(1), totals["discord.ipc.connect.attempts"])
	assert.Equal(t, int64(1), totals["discord.ipc.connect.failures"])
	assert.Equal(t, int64(1), totals["discord.ipc.disconnects"])
	assert.Equal(t, int64(1), totals["discord.ipc.events.dispatched"])
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *telemetry.Metrics
	assert.NotPanics(t, func() {
		m.FrameSent(context.Background())
		m.ConnectFailure(context.Background(), false)
	})
}

func TestNewUsesGlobalProvider(t *testing.T) {
	m, err := telemetry.New(nil)
	require.NoError(t, err)
	assert.NotNil(t, m)
}
