package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime knob. Values come from the environment; main
// loads a .env file first when one exists.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// AuthSecret signs and verifies bearer tokens.
	AuthSecret string `env:"AUTH_SECRET" envDefault:"dev-secret"`

	// DatabaseURL selects the Postgres notification store. Empty means the
	// in-memory store.
	DatabaseURL string `env:"DATABASE_URL"`

	MaxSocketConnections int `env:"MAX_SOCKET_CONNECTIONS" envDefault:"7"`
	MaxStreamConnections int `env:"MAX_STREAM_CONNECTIONS" envDefault:"10"`

	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"30s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
