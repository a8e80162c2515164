package main

import (
	"fmt"

	"codeberg.org/genius/server/api/rest/billing"
	"codeberg.org/genius/server/api/rest/generate"
	"codeberg.org/genius/server/api/rest/health"
	"codeberg.org/genius/server/api/rest/usage"
	"codeberg.org/genius/server/genius/subscriptions"
	"codeberg.org/genius/server/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) error {
	cfg := server.config

	router.Use(CORSMiddleware(cfg.CORSAllowedOrigins))
	router.GET("/health", health.Handler(version, server.healthPinger()))

	rateLimit, err := ratelimit.Middleware(cfg.RateLimit, server.redis)
	if err != nil {
		return fmt.Errorf("failed to create rate limiter: %w", err)
	}

	v1 := router.Group("/api/v1")
	v1.Use(rateLimit)

	{
		v1.GET("/ping", health.PingHandler)

		generate.RegisterRoutes(v1, server.services.LLM, server.services.LLM, generate.Deps{
			Gate:    server.gate,
			Gated:   cfg.IsGated,
			Metrics: server.services.Metrics,
			Timeout: cfg.RequestTimeout,
		})

		usage.RegisterRoutes(v1, server.ledger, server.subs, cfg.FreeLimit)

		if server.services.Billing != nil {
			billing.RegisterRoutes(v1, server.services.Billing, subscriptions.NewRepository(server.db))
		}
	}

	return nil
}

func (s *Server) healthPinger() health.Pinger {
	switch {
	case s.db != nil:
		return s.db
	case s.redis != nil:
		return redisPinger{client: s.redis}
	default:
		return nil
	}
}
