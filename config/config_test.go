package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("MR_WORKERS", "8")
	t.Setenv("MR_SHARDS", "16")
	t.Setenv("MR_BATCH_SIZE", "32")
	t.Setenv("MR_STOP_ON_ERROR", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_DEV", "true")
	t.Setenv("FETCH_RETRY_MAX", "5")
	t.Setenv("FETCH_RETRY_WAIT_MIN", "250ms")
	t.Setenv("FETCH_RETRY_WAIT_MAX", "2s")
	t.Setenv("FETCH_RATE_LIMIT", "2.5")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, StageConfig{Workers: 8, Shards: 16, BatchSize: 32, StopOnError: true}, cfg.Stage)
	require.Equal(t, LogConfig{Level: "debug", Development: true}, cfg.Logging)
	require.Equal(t, FetchConfig{
		RetryMax:     5,
		RetryWaitMin: 250 * time.Millisecond,
		RetryWaitMax: 2 * time.Second,
		RateLimit:    2.5,
	}, cfg.Fetch)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("MR_WORKERS", "many")
	_, err := Load()
	require.Error(t, err)
}
