package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"directMail/app/echo-server/server"
	"directMail/internal/bootstrap"
	"directMail/pkg/config"
	"directMail/pkg/logger"
	"directMail/pkg/metrics"

	"github.com/getsentry/sentry-go"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting direct mail engine", "version", cfg.App.Version, "storage", cfg.Storage)

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.App.Environment,
			Release:     cfg.App.Version,
		}); err != nil {
			logger.Error("Failed to init sentry", "error", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	metrics.Init()

	deps, err := bootstrap.Open(cfg)
	if err != nil {
		logger.Fatal("Failed to open storage", "error", err)
	}
	defer deps.Close()

	e := server.New(server.Options{
		Store:          deps.Store,
		Cache:          deps.Cache,
		RequestTimeout: cfg.Server.RequestTimeout,
		AllowOrigins:   []string{"http://localhost:3000", "http://localhost:8080"},
	})

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
