package metricbundle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestGatewayMetricsRecords(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := NewGatewayMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordFrame(ctx, "in", 2131)
	metrics.RecordFrame(ctx, "in", 2131)
	metrics.RecordTick(ctx, "EURUSD")
	metrics.RecordStageDuration(ctx, "APP_AUTHORIZATION", 0.25)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = true
			if m.Name == "hftgate.frames" {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				require.Len(t, sum.DataPoints, 1)
				assert.Equal(t, int64(2), sum.DataPoints[0].Value)
			}
		}
	}
	assert.True(t, found["hftgate.frames"])
	assert.True(t, found["hftgate.ticks"])
	assert.True(t, found["hftgate.bootstrap.stage_duration"])
}

func TestGatewayMetricsNilSafe(t *testing.T) {
	var metrics *GatewayMetrics
	assert.NotPanics(t, func() {
		metrics.RecordFrame(context.Background(), "out", 51)
		metrics.RecordAdviceOperation(context.Background(), "LONG", "ok")
	})
}
