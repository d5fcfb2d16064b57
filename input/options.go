package input

import (
	"time"

	"github.com/ygrebnov/errorc"
)

type config struct {
	// RetryMax is the number of retries of a failed request.
	// Default: 3.
	RetryMax int

	// RetryWaitMin and RetryWaitMax bound the backoff between retries.
	// Default: 1s and 30s.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Timeout limits a single request attempt, body included.
	// Default: 0 (no limit).
	Timeout time.Duration

	// RateLimit caps remote requests per second. Zero means unlimited.
	// Default: 0.
	RateLimit float64
}

func defaultConfig() config {
	return config{
		RetryMax:     3,
		RetryWaitMin: time.Second,
		RetryWaitMax: 30 * time.Second,
	}
}

// Option configures a URLOpener.
type Option func(*config) error

// WithRetry sets the retry count and backoff bounds of remote requests.
func WithRetry(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *config) error {
		if retryMax < 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithRetry requires retryMax >= 0"))
		}
		if waitMin > waitMax {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithRetry requires waitMin <= waitMax"))
		}
		c.RetryMax, c.RetryWaitMin, c.RetryWaitMax = retryMax, waitMin, waitMax
		return nil
	}
}

// WithTimeout limits the duration of a single request attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *config) error {
		if d < 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithTimeout requires d >= 0"))
		}
		c.Timeout = d
		return nil
	}
}

// WithRateLimit caps remote requests per second; zero disables the limit.
func WithRateLimit(rps float64) Option {
	return func(c *config) error {
		if rps < 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithRateLimit requires rps >= 0"))
		}
		c.RateLimit = rps
		return nil
	}
}
