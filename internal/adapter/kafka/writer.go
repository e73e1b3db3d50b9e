// Package kafka publishes loaded readings to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/iot-temp-pipeline/internal/config"
	"github.com/couchcryptid/iot-temp-pipeline/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces reading messages to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured readings topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes the readings and writes them in a single
// WriteMessages call. loadedAt is the commit time of the batch.
func (w *Writer) Publish(ctx context.Context, readings []domain.Reading, loadedAt time.Time) (int, error) {
	if len(readings) == 0 {
		return 0, nil
	}
	msgs := make([]kafkago.Message, len(readings))
	for i := range readings {
		msg, err := serializeToMessage(readings[i], loadedAt)
		if err != nil {
			return 0, err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("publish readings: %w", err)
	}
	w.logger.Debug("readings published", "count", len(msgs))
	return len(msgs), nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Reading into a Kafka message keyed by room so
// readings of one room stay in one partition.
func serializeToMessage(r domain.Reading, loadedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize reading: %w", err)
	}
	var key, loc []byte
	if r.Room != nil {
		key = []byte(*r.Room)
	}
	if r.Location != nil {
		loc = []byte(*r.Location)
	}
	return kafkago.Message{
		Key:   key,
		Value: data,
		Headers: []kafkago.Header{
			{Key: "location", Value: loc},
			{Key: "loaded_at", Value: []byte(loadedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
