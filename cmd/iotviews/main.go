// Command iotviews serves the aggregate temperature views over HTTP for the
// dashboard.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/iot-temp-pipeline/internal/adapter/http"
	"github.com/couchcryptid/iot-temp-pipeline/internal/adapter/store"
	"github.com/couchcryptid/iot-temp-pipeline/internal/config"
	"github.com/couchcryptid/iot-temp-pipeline/internal/observability"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load() // optional

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, _, err := store.Open(ctx, cfg.Store)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := httpadapter.NewServer(cfg.HTTPAddr, store.NewViewReader(db), logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
