package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment
// variables. Tracker behavior (detector thresholds, seed tasks) lives in the
// YAML file referenced by TrackerConfigPath; the environment covers process
// level concerns only.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Metrics endpoint (plain net/http, prometheus scrape target)
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Management API
	MgmtListenAddr  string `envconfig:"MGMT_LISTEN_ADDR" default:":8090"`
	MgmtAuthMode    string `envconfig:"MGMT_AUTH_MODE" default:"none"`
	MgmtAPIKey      string `envconfig:"MGMT_API_KEY"`
	MgmtCORSOrigins string `envconfig:"MGMT_CORS_ORIGINS"`

	// Persistence
	DBPath string `envconfig:"DB_PATH" default:"tracker.db"`

	// Tracker YAML config (optional; defaults apply when empty or missing)
	TrackerConfigPath string `envconfig:"TRACKER_CONFIG_PATH" default:"tracker.yaml"`

	// Retention sweep cadence. Zero disables the sweep.
	RetentionInterval time.Duration `envconfig:"RETENTION_INTERVAL" default:"1h"`

	// Graceful shutdown budget for in-flight automation executions.
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// IsDevelopment returns true in the development environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// LoadWithPrefix reads configuration with a prefix.
func LoadWithPrefix(prefix string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("loading config with prefix %s: %w", prefix, err)
	}
	return &cfg, nil
}
