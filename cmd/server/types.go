package main

import (
	"codeberg.org/genius/server/genius/subscriptions"
	"codeberg.org/genius/server/genius/usage"
	"codeberg.org/genius/server/internal/config"
	"codeberg.org/genius/server/internal/gate"
	"codeberg.org/genius/server/internal/llm"
	"codeberg.org/genius/server/internal/monitoring"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// holds all dependencies and state for the API server
type Server struct {
	config *config.Config
	router *gin.Engine

	// nil when the configuration doesn't need them
	db    *pgxpool.Pool
	redis *redis.Client

	ledger   usage.Ledger
	subs     gate.SubscriptionChecker
	gate     *gate.Gate
	services *Services
}

// holds all external service clients (LLM, billing, telemetry)
type Services struct {
	LLM       *llm.CompositeLLM
	Billing   *subscriptions.StripeBilling
	Telemetry *monitoring.TelemetryManager
	Metrics   *monitoring.Metrics
}
