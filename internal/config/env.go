package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort           = "8080"
	defaultChatModel      = "gpt-3.5-turbo"
	defaultImageModel     = "dall-e-2"
	defaultFreeLimit      = 5
	defaultRateLimit      = "60-M"
	defaultAppURL         = "http://localhost:3000"
	defaultCORSOrigin     = "http://localhost:3000"
	defaultGated          = "image"
	defaultRequestTimeout = 60 * time.Second
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	return FromEnv(os.Getenv)
}

// builds configuration from a lookup function
func FromEnv(getenv func(string) string) (*Config, error) {
	jwtSecret := getenv("JWT_SECRET")
	openaiKey := getenv("OPENAI_API_KEY")
	anthropicKey := getenv("ANTHROPIC_API_KEY")
	databaseURL := getenv("DATABASE_URL")
	redisURL := getenv("REDIS_URL")

	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if openaiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}

	chatProvider := strings.ToLower(getenv("CHAT_PROVIDER"))
	if chatProvider == "" {
		chatProvider = "openai"
	}

	switch chatProvider {
	case "openai":
	case "anthropic":
		if anthropicKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is required when CHAT_PROVIDER=anthropic")
		}
	default:
		return nil, fmt.Errorf("unsupported CHAT_PROVIDER: %s", chatProvider)
	}

	ledgerBackend := strings.ToLower(getenv("LEDGER_BACKEND"))
	if ledgerBackend == "" {
		ledgerBackend = LedgerPostgres
	}

	switch ledgerBackend {
	case LedgerPostgres:
		if databaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for the postgres ledger")
		}
	case LedgerRedis:
		if redisURL == "" {
			return nil, fmt.Errorf("REDIS_URL environment variable is required for the redis ledger")
		}
	case LedgerMemory:
	default:
		return nil, fmt.Errorf("unsupported LEDGER_BACKEND: %s", ledgerBackend)
	}

	freeLimit, err := intOrDefault(getenv("FREE_LIMIT"), defaultFreeLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid FREE_LIMIT: %w", err)
	}

	if freeLimit < 0 {
		return nil, fmt.Errorf("invalid FREE_LIMIT: must not be negative")
	}

	requestTimeout := defaultRequestTimeout
	if raw := getenv("REQUEST_TIMEOUT"); raw != "" {
		requestTimeout, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
		}
	}

	runMigrations := true
	if raw := getenv("RUN_MIGRATIONS"); raw != "" {
		runMigrations, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid RUN_MIGRATIONS: %w", err)
		}
	}

	// "none" disables gating for every capability
	gated := splitList(stringOrDefault(getenv("GATED_CAPABILITIES"), defaultGated))
	if len(gated) == 1 && gated[0] == "none" {
		gated = nil
	}

	for _, name := range gated {
		switch name {
		case "chat", "code", "image":
		default:
			return nil, fmt.Errorf("invalid GATED_CAPABILITIES: unknown capability %q", name)
		}
	}

	cfg := &Config{
		Port:                stringOrDefault(getenv("PORT"), defaultPort),
		Environment:         stringOrDefault(getenv("ENVIRONMENT"), "development"),
		JWTSecret:           jwtSecret,
		OpenAIKey:           openaiKey,
		OpenAIBaseURL:       getenv("OPENAI_BASE_URL"),
		AnthropicKey:        anthropicKey,
		ChatProvider:        chatProvider,
		ChatModel:           stringOrDefault(getenv("CHAT_MODEL"), defaultChatModel),
		ImageModel:          stringOrDefault(getenv("IMAGE_MODEL"), defaultImageModel),
		LedgerBackend:       ledgerBackend,
		DatabaseURL:         databaseURL,
		RedisURL:            redisURL,
		FreeLimit:           freeLimit,
		GatedCapabilities:   gated,
		RunMigrations:       runMigrations,
		RateLimit:           stringOrDefault(getenv("RATE_LIMIT"), defaultRateLimit),
		CORSAllowedOrigins:  splitList(stringOrDefault(getenv("CORS_ALLOWED_ORIGINS"), defaultCORSOrigin)),
		AppURL:              strings.TrimRight(stringOrDefault(getenv("APP_URL"), defaultAppURL), "/"),
		RequestTimeout:      requestTimeout,
		StripeAPIKey:        getenv("STRIPE_API_KEY"),
		StripeWebhookSecret: getenv("STRIPE_WEBHOOK_SECRET"),
		StripePriceID:       getenv("STRIPE_PRICE_ID"),
		OTLPEndpoint:        getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if cfg.BillingEnabled() && databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required when billing is enabled")
	}

	return cfg, nil
}

func stringOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}

func intOrDefault(value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}

	return strconv.Atoi(value)
}

// splits a comma separated list, dropping blanks
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
