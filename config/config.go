package config

import (
	// Local Packages
	errors "pdv-bridge/errors"
)

var DefaultConfig = []byte(`
application: "pdv-bridge"

logger:
  level: "debug"

is_prod_mode: false

server:
  addr: ":8080"

mongo:
  uri: "mongodb://localhost:27017"
  database: "pdvbridge"

redis:
  uri: "localhost:6379"
  password: ""

kafka:
  enabled: false
  brokers:
    - "localhost:9092"
  topic: "integration-notifications"
  producer_name: "pdv-bridge"

gateway:
  timeout_seconds: 15

notifier:
  buffer_size: 64
`)

type Config struct {
	Application string   `koanf:"application"`
	Logger      Logger   `koanf:"logger"`
	IsProdMode  bool     `koanf:"is_prod_mode"`
	Server      Server   `koanf:"server"`
	Mongo       Mongo    `koanf:"mongo"`
	Redis       Redis    `koanf:"redis"`
	Kafka       Kafka    `koanf:"kafka"`
	Gateway     Gateway  `koanf:"gateway"`
	Notifier    Notifier `koanf:"notifier"`
}

type Logger struct {
	Level string `koanf:"level"`
}

type Server struct {
	Addr string `koanf:"addr"`
}

type Mongo struct {
	URI      string `koanf:"uri"`
	Database string `koanf:"database"`
}

type Redis struct {
	URI      string `koanf:"uri"`
	Password string `koanf:"password"`
}

type Kafka struct {
	Enabled      bool     `koanf:"enabled"`
	Brokers      []string `koanf:"brokers"`
	Topic        string   `koanf:"topic"`
	ProducerName string   `koanf:"producer_name"`
}

type Gateway struct {
	// Bounded request timeout for outbound gateway calls; the engine
	// performs no in-flight cancellation of its own.
	TimeoutSeconds int `koanf:"timeout_seconds"`
}

type Notifier struct {
	BufferSize int `koanf:"buffer_size"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	ve := errors.ValidationErrs()

	if c.Application == "" {
		ve.Add("application", "cannot be empty")
	}
	if c.Logger.Level == "" {
		ve.Add("logger.level", "cannot be empty")
	}
	if c.Server.Addr == "" {
		ve.Add("server.addr", "cannot be empty")
	}
	if c.Mongo.URI == "" {
		ve.Add("mongo.uri", "cannot be empty")
	}
	if c.Mongo.Database == "" {
		ve.Add("mongo.database", "cannot be empty")
	}
	if c.Redis.URI == "" {
		ve.Add("redis.uri", "cannot be empty")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		ve.Add("kafka.brokers", "cannot be empty")
	}
	if c.Gateway.TimeoutSeconds <= 0 {
		ve.Add("gateway.timeout_seconds", "must be positive")
	}
	if c.Notifier.BufferSize <= 0 {
		ve.Add("notifier.buffer_size", "must be positive")
	}

	return ve.Err()
}
