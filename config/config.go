// Package config loads command line tool configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Stage   StageConfig
	Logging LogConfig
	Fetch   FetchConfig
}

// StageConfig holds stage execution configuration.
type StageConfig struct {
	Workers     uint   `envconfig:"MR_WORKERS" default:"0"`
	Shards      uint32 `envconfig:"MR_SHARDS" default:"1"`
	BatchSize   uint   `envconfig:"MR_BATCH_SIZE" default:"256"`
	StopOnError bool   `envconfig:"MR_STOP_ON_ERROR" default:"false"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// FetchConfig holds configuration of remote input fetching.
type FetchConfig struct {
	RetryMax     int           `envconfig:"FETCH_RETRY_MAX" default:"3"`
	RetryWaitMin time.Duration `envconfig:"FETCH_RETRY_WAIT_MIN" default:"1s"`
	RetryWaitMax time.Duration `envconfig:"FETCH_RETRY_WAIT_MAX" default:"30s"`
	// RateLimit is in requests per second; zero disables limiting.
	RateLimit float64 `envconfig:"FETCH_RATE_LIMIT" default:"0"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Stage: StageConfig{
			Workers:   0,
			Shards:    1,
			BatchSize: 256,
		},
		Logging: LogConfig{
			Level: "info",
		},
		Fetch: FetchConfig{
			RetryMax:     3,
			RetryWaitMin: time.Second,
			RetryWaitMax: 30 * time.Second,
		},
	}
}
