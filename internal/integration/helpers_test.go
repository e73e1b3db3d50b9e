//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/iot-temp-pipeline/internal/config"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startPostgres runs a disposable Postgres and returns its connection parameters.
func startPostgres(ctx context.Context, t *testing.T) config.Store {
	t.Helper()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("iot_db"),
		tcpostgres.WithUsername("iot_user"),
		tcpostgres.WithPassword("iot_password"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start postgres container")

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return config.Store{
		Driver:   config.DriverPostgres,
		User:     "iot_user",
		Password: "iot_password",
		Host:     host,
		Port:     port.Int(),
		Name:     "iot_db",
		SSLMode:  "disable",
	}
}

// startKafka runs a single-node Kafka and returns its bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("iot-test"),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err, "start kafka container")

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))

	// Give the broker a moment to elect the partition leader.
	time.Sleep(500 * time.Millisecond)
}
