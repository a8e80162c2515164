package main

import (
	"context"
	"fmt"

	"codeberg.org/genius/server/genius/subscriptions"
	"codeberg.org/genius/server/internal/config"
	"codeberg.org/genius/server/internal/llm"
	"codeberg.org/genius/server/internal/monitoring"
)

// creates and configures all service clients
func InitializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	llmClient, err := llm.NewLLMWithConfig(llm.ConfigFromServer(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	telemetry, err := monitoring.NewTelemetryManager(ctx, monitoring.TelemetryConfig{
		ServiceName:    "genius-server",
		ServiceVersion: version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	metrics, err := monitoring.NewMetrics(telemetry.Meter("codeberg.org/genius/server"))
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	services := &Services{
		LLM:       llmClient,
		Telemetry: telemetry,
		Metrics:   metrics,
	}

	if cfg.BillingEnabled() {
		services.Billing, err = subscriptions.NewStripeBilling(subscriptions.StripeConfig{
			APIKey:        cfg.StripeAPIKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			PriceID:       cfg.StripePriceID,
			ReturnURL:     cfg.AppURL + "/settings",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stripe client: %w", err)
		}
	}

	return services, nil
}
