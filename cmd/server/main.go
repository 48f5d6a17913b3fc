package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/allin/internal/adapter/csvstore"
	"github.com/pscheid92/allin/internal/adapter/httpserver"
	"github.com/pscheid92/allin/internal/adapter/metrics"
	"github.com/pscheid92/allin/internal/adapter/sqlitestore"
	"github.com/pscheid92/allin/internal/app"
	"github.com/pscheid92/allin/internal/domain"
	"github.com/pscheid92/allin/internal/platform/config"
	"github.com/pscheid92/allin/internal/platform/logging"
	"github.com/pscheid92/allin/internal/platform/version"
	"github.com/pscheid92/allin/internal/sentiment"
)

func runGracefulShutdown(srv *httpserver.Server, closers ...io.Closer) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		for _, c := range closers {
			if err := c.Close(); err != nil {
				slog.Error("Failed to close resource", "error", err)
			}
		}

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// setupStore opens the configured backend. The returned closer is nil for
// stores that hold no resources.
func setupStore(cfg *config.Config, clock clockwork.Clock) (domain.PostStore, io.Closer) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		store, err := sqlitestore.New(ctx, cfg.SQLitePath, clock)
		if err != nil {
			slog.Error("Failed to open SQLite store", "path", cfg.SQLitePath, "error", err)
			os.Exit(1)
		}
		return store, store
	default:
		return csvstore.New(cfg.CSVPath), nil
	}
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "version", version.Get().String(), "env", cfg.AppEnv, "port", cfg.Port, "store", cfg.StoreBackend, "path", cfg.StorePath())

	store, storeCloser := setupStore(cfg, clock)

	registry := metrics.NewRegistry()
	boardMetrics := metrics.NewBoardMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	metrics.RegisterStoreInfo(registry, cfg.StoreBackend)

	appSvc := app.NewService(store, sentiment.NewScorer(), clock, boardMetrics)

	healthChecks := []httpserver.HealthCheck{
		{Name: "store", Check: appSvc.Ping},
	}

	srv, err := httpserver.NewServer(cfg, appSvc, httpMetrics, metrics.Handler(registry), healthChecks)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	var closers []io.Closer
	if storeCloser != nil {
		closers = append(closers, storeCloser)
	}
	done := runGracefulShutdown(srv, closers...)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
