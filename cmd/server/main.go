package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/genius/server/internal/config"
	"codeberg.org/genius/server/internal/logger"
)

// set at build time with -ldflags "-X main.version=..."
var version = "dev"

// @title Genius API
// @version 1.0
// @description Conversation, code and image generation behind a free tier gate
// @description
// @description Features:
// @description - Chat completion and code generation
// @description - Image generation
// @description - Free tier accounting with a Stripe pro subscription

// @contact.name API Support
// @contact.url https://codeberg.org/genius/server

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authenticated requests. Format: Bearer {token}

func main() {
	// route slog calls from libraries through the same handler
	slog.SetDefault(logger.Default())

	logger.Info("starting genius server", "version", version)

	// load configuration from environment
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	// create server with all dependencies
	srv, err := NewServer(context.Background(), cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	httpServer := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     srv.router,
		ReadTimeout: 15 * time.Second,
		// image generation can take most of the upstream timeout
		WriteTimeout: cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// start server in goroutine
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	// wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// graceful shutdown with 10 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	srv.Close()

	logger.Info("server stopped")
}
