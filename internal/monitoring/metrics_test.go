package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}

	return out
}

func TestMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := NewMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordRequest(ctx, "image", OutcomeSuccess, 2*time.Second)
	metrics.RecordRequest(ctx, "image", OutcomeLimited, time.Millisecond)
	metrics.RecordUsage(ctx, "image")

	got := collect(t, reader)

	requests, ok := got["generation_requests_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Len(t, requests.DataPoints, 2)

	usage, ok := got["ledger_increments_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, usage.DataPoints, 1)
	assert.Equal(t, int64(1), usage.DataPoints[0].Value)

	_, ok = got["generation_duration_seconds"].Data.(metricdata.Histogram[float64])
	assert.True(t, ok)
}

func TestMetrics_RecordFailure_CarriesCategory(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := NewMetrics(provider.Meter("test"))
	require.NoError(t, err)

	metrics.RecordFailure(context.Background(), "image", "upstream", time.Second)

	requests, ok := collect(t, reader)["generation_requests_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, requests.DataPoints, 1)

	attrs := requests.DataPoints[0].Attributes
	outcome, ok := attrs.Value(attribute.Key("outcome"))
	require.True(t, ok)
	assert.Equal(t, OutcomeError, outcome.AsString())

	category, ok := attrs.Value(attribute.Key("category"))
	require.True(t, ok)
	assert.Equal(t, "upstream", category.AsString())
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var metrics *Metrics

	assert.NotPanics(t, func() {
		metrics.RecordRequest(context.Background(), "chat", OutcomeSuccess, time.Second)
		metrics.RecordFailure(context.Background(), "chat", "upstream", time.Second)
		metrics.RecordUsage(context.Background(), "chat")
	})
}

func TestNewTelemetryManager_WithoutEndpoint(t *testing.T) {
	tm, err := NewTelemetryManager(context.Background(), TelemetryConfig{ServiceName: "genius"})
	require.NoError(t, err)

	metrics, err := NewMetrics(tm.Meter("test"))
	require.NoError(t, err)
	metrics.RecordUsage(context.Background(), "image")

	assert.NoError(t, tm.Shutdown(context.Background()))
}
