package stage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/ygrebnov/errorc"
	"go.uber.org/zap"

	"github.com/ygrebnov/fibers"
	"github.com/ygrebnov/fibers/metrics"
	"github.com/ygrebnov/fibers/mr"
)

// Mapper processes one record of an input. Return an error wrapping mr.ErrParse to count
// the record as a parse error and continue with the next one; any other error fails the input.
type Mapper func(c *mr.RawContext, record string) error

// Report summarizes a finished stage run.
type Report struct {
	// Inputs is the number of inputs that were started, failed ones included.
	Inputs int
	// Failed is the number of started inputs that failed.
	Failed int
	// Skipped is the number of inputs never started because the run was cancelled.
	Skipped int
	// Items is the number of records handed to the mapper.
	Items       int64
	ParseErrors int64
	// Metrics is the aggregated metric map, reserved metrics included.
	Metrics map[string]int64
	// FreqMaps holds the frequency maps finalized by this stage, ready for the next one.
	FreqMaps mr.FreqMapRegistry
}

// Stage runs a Mapper over a list of inputs. A Stage runs once.
type Stage struct {
	exec   *mr.OperatorExecutor
	mapper Mapper
	cfg    config
	logger *zap.Logger

	done fibers.Done
	ran  atomic.Bool

	inputsTotal    metrics.Counter
	inputsInflight metrics.UpDownCounter
	inputErrors    metrics.Counter
	records        metrics.Counter
}

// New returns a Stage merging into exec.
func New(exec *mr.OperatorExecutor, mapper Mapper, opts ...Option) (*Stage, error) {
	if exec == nil {
		return nil, errorc.With(ErrInvalidConfig, errorc.String("", "executor is nil"))
	}
	if mapper == nil {
		return nil, errorc.With(ErrInvalidConfig, errorc.String("", "mapper is nil"))
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	p := cfg.Metrics
	return &Stage{
		exec:   exec,
		mapper: mapper,
		cfg:    cfg,
		logger: cfg.Logger,
		done:   fibers.NewDone(),
		inputsTotal: p.Counter("stage_inputs_total",
			metrics.WithDescription("Inputs started."), metrics.WithUnit("1")),
		inputsInflight: p.UpDownCounter("stage_inputs_inflight",
			metrics.WithDescription("Inputs being processed."), metrics.WithUnit("1")),
		inputErrors: p.Counter("stage_input_errors_total",
			metrics.WithDescription("Inputs that failed."), metrics.WithUnit("1")),
		records: p.Counter("stage_records_total",
			metrics.WithDescription("Records handed to the mapper."), metrics.WithUnit("1")),
	}, nil
}

// Done is notified when Run returns.
func (s *Stage) Done() fibers.Done { return s.done }

// Run processes inputs and returns the stage report. prev holds the frequency maps
// finalized by the previous stage and may be nil.
//
// Every input is validated before any worker starts. The returned error joins the errors
// of all failed and skipped inputs, ordered by input index.
func (s *Stage) Run(ctx context.Context, prev mr.FreqMapRegistry, inputs []mr.FileSpec) (Report, error) {
	if !s.ran.CompareAndSwap(false, true) {
		return Report{}, ErrInvalidState
	}
	defer s.done.Notify()

	jobs := make([]job, len(inputs))
	for i, fs := range inputs {
		if err := fs.Validate(); err != nil {
			return Report{}, newInputTaggedError(err, i, fs.URL)
		}
		jobs[i] = job{index: i, spec: fs}
	}

	if err := s.exec.Init(prev); err != nil {
		return Report{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu      sync.Mutex
		errs    []error
		items   atomic.Int64
		started atomic.Int64
	)

	skipped := newDispatcher(s.cfg.MaxWorkers).run(ctx, jobs, func(ctx context.Context, w *worker, j job) {
		started.Add(1)
		s.inputsTotal.Add(1)
		s.inputsInflight.Add(1)
		defer s.inputsInflight.Add(-1)

		s.logger.Debug("input started", zap.Int("index", j.index), zap.String("url", j.spec.URL))
		n, err := w.execute(ctx, s, j)
		items.Add(n)
		s.records.Add(n)

		if err == nil {
			s.logger.Debug("input finished", zap.Int("index", j.index), zap.Int64("records", n))
			return
		}

		err = newInputTaggedError(err, j.index, j.spec.URL)
		s.inputErrors.Add(1)
		s.logger.Warn("input failed", zap.Int("index", j.index), zap.String("url", j.spec.URL), zap.Error(err))

		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()

		if s.cfg.StopOnError {
			cancel()
		}
	})

	failed := len(errs)
	for _, j := range skipped {
		errs = append(errs, newInputTaggedError(
			fmt.Errorf("%w: %w", ErrInputCancelled, context.Cause(ctx)), j.index, j.spec.URL))
	}
	slices.SortFunc(errs, func(a, b error) int {
		ia, _ := ExtractInputIndex(a)
		ib, _ := ExtractInputIndex(b)
		return ia - ib
	})

	finalized := make(mr.FreqMapRegistry)
	s.exec.ExtractFreqMap(func(name string, m mr.FreqMap) { finalized[name] = m })

	return Report{
		Inputs:      int(started.Load()),
		Failed:      failed,
		Skipped:     len(skipped),
		Items:       items.Load(),
		ParseErrors: s.exec.ParseErrors(),
		Metrics:     s.exec.MetricMap(),
		FreqMaps:    finalized,
	}, errors.Join(errs...)
}

// mapBatch hands lines to the mapper. Parse errors are counted in c; a panic or any other
// error stops the batch.
func (s *Stage) mapBatch(c *mr.RawContext, lines []string) (n int64, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrInputPanicked, p)
		}
	}()

	for _, line := range lines {
		n++
		if mapErr := s.mapper(c, line); mapErr != nil {
			if errors.Is(mapErr, mr.ErrParse) {
				c.IncParseErrors()
				continue
			}
			return n, mapErr
		}
	}
	return n, nil
}
