package config

import "time"

// ledger storage backends
const (
	LedgerPostgres = "postgres"
	LedgerRedis    = "redis"
	LedgerMemory   = "memory"
)

type Config struct {
	Port        string
	Environment string
	JWTSecret   string

	// upstream generation services
	OpenAIKey     string
	OpenAIBaseURL string
	AnthropicKey  string
	ChatProvider  string
	ChatModel     string
	ImageModel    string

	// usage accounting
	LedgerBackend     string
	DatabaseURL       string
	RedisURL          string
	FreeLimit         int
	GatedCapabilities []string
	RunMigrations     bool

	// http surface
	RateLimit          string
	CORSAllowedOrigins []string
	AppURL             string
	RequestTimeout     time.Duration

	// billing
	StripeAPIKey        string
	StripeWebhookSecret string
	StripePriceID       string

	OTLPEndpoint string
}

// reports whether all stripe settings are present
func (c *Config) BillingEnabled() bool {
	return c.StripeAPIKey != "" && c.StripeWebhookSecret != "" && c.StripePriceID != ""
}

// reports whether a postgres connection is needed
func (c *Config) NeedsDatabase() bool {
	return c.LedgerBackend == LedgerPostgres || c.BillingEnabled()
}

// reports whether the named capability consumes free-tier usage
func (c *Config) IsGated(capability string) bool {
	for _, name := range c.GatedCapabilities {
		if name == capability {
			return true
		}
	}

	return false
}
