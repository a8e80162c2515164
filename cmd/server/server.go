package main

import (
	"context"
	"fmt"

	"codeberg.org/genius/server/genius/subscriptions"
	"codeberg.org/genius/server/genius/usage"
	"codeberg.org/genius/server/internal/config"
	"codeberg.org/genius/server/internal/database"
	"codeberg.org/genius/server/internal/gate"
	"codeberg.org/genius/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// creates and configures a new server instance with all dependencies
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	server := &Server{config: cfg}

	if cfg.NeedsDatabase() {
		if cfg.RunMigrations {
			if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
				return nil, err
			}
		}

		db, err := database.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}

		server.db = db
	}

	if cfg.RedisURL != "" {
		client, err := usage.NewRedisClient(cfg.RedisURL)
		if err != nil {
			server.Close()
			return nil, err
		}

		server.redis = client
	}

	switch cfg.LedgerBackend {
	case config.LedgerPostgres:
		server.ledger = usage.NewPostgresStore(server.db)
	case config.LedgerRedis:
		server.ledger = usage.NewRedisStore(server.redis)
	default:
		logger.Warn("using in-memory usage ledger, counts are lost on restart")
		server.ledger = usage.NewMemoryStore()
	}

	if server.db != nil {
		server.subs = subscriptions.NewRepository(server.db)
	} else {
		server.subs = subscriptions.NoSubscriptions{}
	}

	server.gate = gate.New(server.ledger, server.subs, cfg.FreeLimit)

	services, err := InitializeServices(ctx, cfg)
	if err != nil {
		server.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	server.services = services

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	server.router = gin.New()
	server.router.Use(gin.Recovery(), logger.RequestLogger())

	if err := RegisterRoutes(server.router, server); err != nil {
		server.Close()
		return nil, err
	}

	logger.Info("server initialized",
		"ledger", cfg.LedgerBackend,
		"chat_provider", cfg.ChatProvider,
		"free_limit", cfg.FreeLimit,
		"gated", cfg.GatedCapabilities,
		"billing", cfg.BillingEnabled(),
	)

	return server, nil
}

// releases connections and flushes telemetry
func (s *Server) Close() {
	if s.services != nil && s.services.Telemetry != nil {
		if err := s.services.Telemetry.Shutdown(context.Background()); err != nil {
			logger.ErrorErr(err, "failed to shutdown telemetry")
		}
	}

	if s.redis != nil {
		s.redis.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}

	if s.db != nil {
		s.db.Close()
	}
}
