// Package mqtt publishes loaded readings to an MQTT broker, one message per
// reading on a per-room topic.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/iot-temp-pipeline/internal/config"
	"github.com/couchcryptid/iot-temp-pipeline/internal/domain"
	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	qos            = 1
	publishTimeout = 5 * time.Second
	unknownRoom    = "unknown"
)

// publishClient is the subset of paho.Client used to send messages.
type publishClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Publisher sends readings to "<prefix>/<room>/reading".
// It implements pipeline.Publisher.
type Publisher struct {
	client publishClient
	conn   paho.Client
	prefix string
	logger *slog.Logger
}

// message is the wire form of a published reading.
type message struct {
	domain.Reading
	LoadedAt time.Time `json:"loaded_at"`
}

// NewPublisher creates an unconnected Publisher for the configured broker.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	c := paho.NewClient(opts)
	return &Publisher{client: c, conn: c, prefix: cfg.MQTTTopicPrefix, logger: logger}
}

// Connect waits for the broker connection, respecting ctx.
func (p *Publisher) Connect(ctx context.Context) error {
	token := p.conn.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			p.logger.Info("mqtt connected")
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// Publish sends every reading and returns how many the broker acknowledged.
// It stops at the first failure.
func (p *Publisher) Publish(ctx context.Context, readings []domain.Reading, loadedAt time.Time) (int, error) {
	loadedAt = loadedAt.UTC()
	for i := range readings {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		topic := p.topic(readings[i])
		data, err := json.Marshal(message{Reading: readings[i], LoadedAt: loadedAt})
		if err != nil {
			return i, fmt.Errorf("marshal reading: %w", err)
		}

		token := p.client.Publish(topic, qos, false, data)
		if !token.WaitTimeout(publishTimeout) {
			return i, fmt.Errorf("publish timeout for topic %s", topic)
		}
		if err := token.Error(); err != nil {
			return i, fmt.Errorf("publish reading: %w", err)
		}
	}
	p.logger.Debug("readings published over mqtt", "count", len(readings), "prefix", p.prefix)
	return len(readings), nil
}

// Disconnect closes the broker connection after quiescing in-flight work.
func (p *Publisher) Disconnect() {
	if p.conn != nil {
		p.conn.Disconnect(250)
	}
}

func (p *Publisher) topic(r domain.Reading) string {
	room := unknownRoom
	if r.Room != nil {
		if s := topicSafe(*r.Room); s != "" {
			room = s
		}
	}
	return p.prefix + "/" + room + "/reading"
}

// topicSafe strips characters that are MQTT wildcards or level separators.
func topicSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '+', '#':
			return '_'
		case 0:
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
