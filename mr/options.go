package mr

import (
	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"

	"github.com/ygrebnov/fibers/metrics"
)

// executorConfig holds OperatorExecutor configuration.
type executorConfig struct {
	// Logger receives merge traces at debug level and the fatal metadata error.
	// Default: zap.NewNop().
	Logger *zap.Logger

	// Metrics records executor instrumentation.
	// Default: metrics.NoopProvider.
	Metrics metrics.Provider

	// InitHook runs at the end of Init with the previous stage's registry.
	// Default: nil.
	InitHook func(prev FreqMapRegistry) error
}

func defaultExecutorConfig() executorConfig {
	return executorConfig{
		Logger:  zap.NewNop(),
		Metrics: metrics.NewNoopProvider(),
	}
}

// Option configures an OperatorExecutor.
type Option func(*executorConfig) error

// WithLogger sets the executor logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *executorConfig) error {
		if l == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("option", "WithLogger: nil logger"))
		}
		c.Logger = l
		return nil
	}
}

// WithMetrics sets the metrics provider.
func WithMetrics(p metrics.Provider) Option {
	return func(c *executorConfig) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("option", "WithMetrics: nil provider"))
		}
		c.Metrics = p
		return nil
	}
}

// WithInitHook registers component specific setup run by Init.
func WithInitHook(fn func(prev FreqMapRegistry) error) Option {
	return func(c *executorConfig) error {
		c.InitHook = fn
		return nil
	}
}
