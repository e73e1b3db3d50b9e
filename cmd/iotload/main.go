// Command iotload applies the store schema and imports the sensor CSV export
// named by DATA_PATH. It exits non-zero when any step fails.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/iot-temp-pipeline/internal/adapter/csvfile"
	kafkaadapter "github.com/couchcryptid/iot-temp-pipeline/internal/adapter/kafka"
	mqttadapter "github.com/couchcryptid/iot-temp-pipeline/internal/adapter/mqtt"
	"github.com/couchcryptid/iot-temp-pipeline/internal/adapter/store"
	"github.com/couchcryptid/iot-temp-pipeline/internal/config"
	"github.com/couchcryptid/iot-temp-pipeline/internal/observability"
	"github.com/couchcryptid/iot-temp-pipeline/internal/pipeline"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	_ = godotenv.Load() // optional

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	err = run(context.Background(), cfg, logger, metrics)

	if cfg.PushgatewayURL != "" {
		if pushErr := metrics.Push(context.Background(), cfg.PushgatewayURL); pushErr != nil {
			logger.Warn("metrics push failed", "error", pushErr)
		}
	}
	if err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	db, dialect, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer db.Close()

	ddl, err := store.LoadSchema(dialect, cfg.SchemaPath)
	if err != nil {
		return err
	}
	if err := store.ApplySchema(ctx, db, ddl); err != nil {
		return err
	}
	logger.Info("schema applied", "driver", dialect.Name)

	if _, err := os.Stat(cfg.DataPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("data file not found, skipping import", "path", cfg.DataPath)
			return nil
		}
		return fmt.Errorf("stat data file: %w", err)
	}

	var publishers []pipeline.Publisher
	if cfg.PublishEnabled() {
		w := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		publishers = append(publishers, w)
		logger.Info("kafka fan-out enabled", "topic", cfg.KafkaTopic)
	}
	if cfg.MQTTEnabled() {
		if pub := connectMQTT(ctx, cfg, logger); pub != nil {
			defer pub.Disconnect()
			publishers = append(publishers, pub)
		}
	}

	p := pipeline.New(
		csvfile.Extractor{},
		store.NewLoader(db, dialect, logger),
		clockwork.NewRealClock(),
		logger,
		metrics,
		publishers...,
	)
	_, err = p.Run(ctx, cfg.DataPath)
	return err
}

// connectMQTT returns a connected publisher, or nil when the broker is
// unreachable. Fan-out never blocks the import.
func connectMQTT(ctx context.Context, cfg *config.Config, logger *slog.Logger) *mqttadapter.Publisher {
	pub := mqttadapter.NewPublisher(cfg, logger)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pub.Connect(connectCtx); err != nil {
		logger.Warn("mqtt fan-out disabled", "broker", cfg.MQTTBroker, "error", err)
		return nil
	}
	logger.Info("mqtt fan-out enabled", "broker", cfg.MQTTBroker, "prefix", cfg.MQTTTopicPrefix)
	return pub
}
