package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Supported store drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Store holds the connection parameters for the durable store.
type Store struct {
	Driver   string
	User     string
	Password string
	Host     string
	Port     int
	Name     string
	SSLMode  string

	// SQLitePath is the database file used when Driver is sqlite.
	SQLitePath string
}

// Config holds all service settings, populated from environment variables.
type Config struct {
	Store Store

	DataPath   string
	SchemaPath string

	LogLevel  string
	LogFormat string

	HTTPAddr        string
	ShutdownTimeout time.Duration

	// Reading fan-out. Publishing is disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string

	// MQTT fan-out. Publishing is disabled when MQTTBroker is empty.
	MQTTBroker      string
	MQTTPort        int
	MQTTClientID    string
	MQTTTopicPrefix string

	// PushgatewayURL enables pushing run metrics when set.
	PushgatewayURL string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	driver := strings.ToLower(sharedcfg.EnvOrDefault("DB_DRIVER", DriverPostgres))
	defaultPort := "5432"
	if driver == DriverMySQL {
		defaultPort = "3306"
	}

	portStr := sharedcfg.EnvOrDefault("DB_PORT", defaultPort)
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid DB_PORT %q", portStr)
	}

	mqttPortStr := sharedcfg.EnvOrDefault("MQTT_PORT", "1883")
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil || mqttPort <= 0 || mqttPort > 65535 {
		return nil, fmt.Errorf("invalid MQTT_PORT %q", mqttPortStr)
	}

	cfg := &Config{
		Store: Store{
			Driver:     driver,
			User:       sharedcfg.EnvOrDefault("DB_USER", "iot_user"),
			Password:   sharedcfg.EnvOrDefault("DB_PASSWORD", "iot_password"),
			Host:       sharedcfg.EnvOrDefault("DB_HOST", "localhost"),
			Port:       port,
			Name:       sharedcfg.EnvOrDefault("DB_NAME", "iot_db"),
			SSLMode:    sharedcfg.EnvOrDefault("DB_SSLMODE", "disable"),
			SQLitePath: sharedcfg.EnvOrDefault("SQLITE_PATH", "data/iot.db"),
		},
		DataPath:        sharedcfg.EnvOrDefault("DATA_PATH", "data/IOT-temp.csv"),
		SchemaPath:      sharedcfg.EnvOrDefault("SCHEMA_PATH", ""),
		LogLevel:        strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "json")),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout: shutdownTimeout,
		KafkaBrokers:    parseList(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "")),
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "temperature-readings"),
		MQTTBroker:      sharedcfg.EnvOrDefault("MQTT_BROKER", ""),
		MQTTPort:        mqttPort,
		MQTTClientID:    sharedcfg.EnvOrDefault("MQTT_CLIENT_ID", "iot-temp-loader"),
		MQTTTopicPrefix: strings.TrimSuffix(sharedcfg.EnvOrDefault("MQTT_TOPIC_PREFIX", "iot/temperature"), "/"),
		PushgatewayURL:  sharedcfg.EnvOrDefault("PUSHGATEWAY_URL", ""),
	}

	switch cfg.Store.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER %q (allowed: postgres, mysql, sqlite)", cfg.Store.Driver)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q (allowed: json, text)", cfg.LogFormat)
	}

	return cfg, nil
}

// PublishEnabled reports whether loaded readings are fanned out to Kafka.
func (c *Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// MQTTEnabled reports whether loaded readings are fanned out over MQTT.
func (c *Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}

func parseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
