package monitoring

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// outcomes of a generation request
const (
	OutcomeSuccess      = "success"
	OutcomeUnauthorized = "unauthorized"
	OutcomeInvalid      = "invalid"
	OutcomeLimited      = "limited"
	OutcomeError        = "error"
)

// instruments for the generation routes, a nil *Metrics records nothing
type Metrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	usage    metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requests, err := meter.Int64Counter("generation_requests_total",
		metric.WithDescription("Generation requests by capability and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create requests counter: %w", err)
	}

	duration, err := meter.Float64Histogram("generation_duration_seconds",
		metric.WithDescription("Time spent serving generation requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	usage, err := meter.Int64Counter("ledger_increments_total",
		metric.WithDescription("Successful calls recorded in the usage ledger"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create usage counter: %w", err)
	}

	return &Metrics{
		requests: requests,
		duration: duration,
		usage:    usage,
	}, nil
}

func (m *Metrics) RecordRequest(ctx context.Context, capability, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("capability", capability),
		attribute.String("outcome", outcome),
	))

	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("capability", capability),
	))
}

// records an errored request along with the error category
func (m *Metrics) RecordFailure(ctx context.Context, capability, category string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("capability", capability),
		attribute.String("outcome", OutcomeError),
		attribute.String("category", category),
	))

	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("capability", capability),
	))
}

func (m *Metrics) RecordUsage(ctx context.Context, capability string) {
	if m == nil {
		return
	}

	m.usage.Add(ctx, 1, metric.WithAttributes(attribute.String("capability", capability)))
}
