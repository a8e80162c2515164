package monitoring

import (
	"context"
	"fmt"

	"codeberg.org/genius/server/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type TelemetryConfig struct {
	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string // metrics are discarded when empty
}

// owns the meter provider for the process
type TelemetryManager struct {
	meterProvider metric.MeterProvider
	shutdown      func(context.Context) error
}

// creates an OTLP/gRPC exporting provider, or a noop provider when no
// endpoint is configured
func NewTelemetryManager(ctx context.Context, config TelemetryConfig) (*TelemetryManager, error) {
	if config.OTLPEndpoint == "" {
		logger.Debug("otlp endpoint not set, metrics disabled")

		return &TelemetryManager{
			meterProvider: noop.NewMeterProvider(),
			shutdown:      func(context.Context) error { return nil },
		}, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(config.OTLPEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)

	otel.SetMeterProvider(provider)
	logger.Info("otlp metrics enabled", "endpoint", config.OTLPEndpoint)

	return &TelemetryManager{
		meterProvider: provider,
		shutdown:      provider.Shutdown,
	}, nil
}

func (tm *TelemetryManager) Meter(instrumentationName string) metric.Meter {
	return tm.meterProvider.Meter(instrumentationName)
}

// flushes pending metrics
func (tm *TelemetryManager) Shutdown(ctx context.Context) error {
	return tm.shutdown(ctx)
}
