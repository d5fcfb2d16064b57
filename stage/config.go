package stage

import (
	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"

	"github.com/ygrebnov/fibers/input"
	"github.com/ygrebnov/fibers/metrics"
	"github.com/ygrebnov/fibers/mr"
)

// config holds Stage configuration.
type config struct {
	// MaxWorkers bounds the number of inputs processed at the same time.
	// Zero means one worker per input.
	// Default: 0
	MaxWorkers uint

	// Shards is the number of output shards each worker context writes to.
	// Default: 1
	Shards uint32

	// BatchSize is the number of lines a reader hands to the mapper at once.
	// Default: 256
	BatchSize uint

	// StopOnError cancels the inputs not yet finished after the first input fails.
	// Default: false
	StopOnError bool

	// Opener opens inputs by URL.
	// Default: input.FileOpener (local files only).
	Opener input.Opener

	// Sink receives the records written by worker contexts.
	// Default: mr.DiscardSink.
	Sink mr.Sink

	Logger  *zap.Logger
	Metrics metrics.Provider
}

func defaultConfig() config {
	return config{
		MaxWorkers:  0,
		Shards:      1,
		BatchSize:   256,
		StopOnError: false,
		Opener:      input.FileOpener{},
		Sink:        mr.DiscardSink{},
		Logger:      zap.NewNop(),
		Metrics:     metrics.NewNoopProvider(),
	}
}

// Option configures a Stage.
type Option func(*config) error

// WithMaxWorkers bounds the number of inputs processed concurrently (must be > 0).
func WithMaxWorkers(n uint) Option {
	return func(cfg *config) error {
		if n == 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMaxWorkers requires n > 0"))
		}
		cfg.MaxWorkers = n
		return nil
	}
}

// WithShards sets the number of output shards (must be > 0).
func WithShards(n uint32) Option {
	return func(cfg *config) error {
		if n == 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithShards requires n > 0"))
		}
		cfg.Shards = n
		return nil
	}
}

// WithBatchSize sets the number of lines per reader batch (must be > 0).
func WithBatchSize(n uint) Option {
	return func(cfg *config) error {
		if n == 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithBatchSize requires n > 0"))
		}
		cfg.BatchSize = n
		return nil
	}
}

// WithStopOnError cancels the remaining inputs when the first input fails.
func WithStopOnError() Option {
	return func(cfg *config) error { cfg.StopOnError = true; return nil }
}

// WithOpener sets the input opener.
func WithOpener(o input.Opener) Option {
	return func(cfg *config) error {
		if o == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithOpener requires a non-nil opener"))
		}
		cfg.Opener = o
		return nil
	}
}

// WithSink sets the output sink shared by all worker contexts.
func WithSink(s mr.Sink) Option {
	return func(cfg *config) error {
		if s == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithSink requires a non-nil sink"))
		}
		cfg.Sink = s
		return nil
	}
}

// WithLogger sets the stage logger.
func WithLogger(l *zap.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithLogger requires a non-nil logger"))
		}
		cfg.Logger = l
		return nil
	}
}

// WithMetrics sets the metrics provider for stage instrumentation.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMetrics requires a non-nil provider"))
		}
		cfg.Metrics = p
		return nil
	}
}
