package mr

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ygrebnov/fibers/metrics"
)

// Reserved metric names maintained by FinalizeContext.
const (
	MetricFnCalls  = "fn-calls"
	MetricFnWrites = "fn-writes"
)

// OperatorExecutor aggregates the results of every worker context of one stage execution.
//
// Workers finish in any order and each hands its context to FinalizeContext exactly once.
// Metrics are summed by name; frequency maps are moved into the aggregate when the name is
// new and added key by key otherwise, so the final state does not depend on completion order.
type OperatorExecutor struct {
	prev FreqMapRegistry

	mu        sync.Mutex
	metricMap map[string]int64
	freqMaps  map[string]FreqMap

	parseErrors atomic.Int64

	logger   *zap.Logger
	initHook func(FreqMapRegistry) error

	finalized   metrics.Counter
	steals      metrics.Counter
	merges      metrics.Counter
	parseErrCnt metrics.Counter
	finalizeDur metrics.Histogram
}

// NewOperatorExecutor returns an executor with empty aggregates.
func NewOperatorExecutor(opts ...Option) (*OperatorExecutor, error) {
	cfg := defaultExecutorConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	p := cfg.Metrics
	return &OperatorExecutor{
		metricMap: make(map[string]int64),
		freqMaps:  make(map[string]FreqMap),
		logger:    cfg.Logger,
		initHook:  cfg.InitHook,
		finalized: p.Counter("mr_contexts_finalized_total",
			metrics.WithDescription("Worker contexts merged into the stage aggregate."), metrics.WithUnit("1")),
		steals: p.Counter("mr_freqmap_steals_total",
			metrics.WithDescription("Frequency maps moved into the aggregate without copying."), metrics.WithUnit("1")),
		merges: p.Counter("mr_freqmap_merges_total",
			metrics.WithDescription("Frequency maps added into an existing aggregate map."), metrics.WithUnit("1")),
		parseErrCnt: p.Counter("mr_parse_errors_total",
			metrics.WithDescription("Records that failed to parse."), metrics.WithUnit("1")),
		finalizeDur: p.Histogram("mr_finalize_seconds",
			metrics.WithDescription("Time spent flushing and merging one worker context."), metrics.WithUnit("seconds")),
	}, nil
}

// Init stores the frequency maps finalized by the previous stage and runs the init hook.
// It is called once, before any worker context is registered.
func (e *OperatorExecutor) Init(prev FreqMapRegistry) error {
	e.prev = prev
	if e.initHook != nil {
		return e.initHook(prev)
	}
	return nil
}

// RegisterContext hands c the previous stage's registry. Call it once per new context.
func (e *OperatorExecutor) RegisterContext(c *RawContext) {
	c.finalizedMaps = e.prev
}

// FinalizeContext merges a finished worker context into the aggregate. itemsCnt is the
// number of items the worker processed.
//
// The context's buffered output is flushed first. A flush failure does not skip the merge:
// the counts are still accounted for and the flush error is returned.
// After the call the context no longer owns its frequency maps.
func (e *OperatorExecutor) FinalizeContext(itemsCnt int64, c *RawContext) error {
	start := time.Now()
	defer func() { e.finalizeDur.Record(time.Since(start).Seconds()) }()

	flushErr := c.Flush()

	if n := c.ParseErrors(); n > 0 {
		e.parseErrors.Add(n)
		e.parseErrCnt.Add(n)
	}

	var stolen, merged int
	e.mu.Lock()
	for name, v := range c.metricMap {
		e.metricMap[name] += v
	}
	e.metricMap[MetricFnCalls] += itemsCnt
	e.metricMap[MetricFnWrites] += c.ItemWrites()

	for name, m := range c.freqMaps {
		dst, ok := e.freqMaps[name]
		if !ok {
			e.freqMaps[name] = m
			stolen++
			continue
		}
		dst.Add(m)
		merged++
	}
	e.mu.Unlock()
	c.freqMaps = nil

	e.finalized.Add(1)
	e.steals.Add(int64(stolen))
	e.merges.Add(int64(merged))
	e.logger.Debug("worker context finalized",
		zap.Int64("items", itemsCnt),
		zap.Int64("writes", c.ItemWrites()),
		zap.Int("maps_stolen", stolen),
		zap.Int("maps_merged", merged),
	)

	return flushErr
}

// ExtractFreqMap hands every aggregated frequency map to cb, in name order, and leaves the
// executor without maps. It must not run concurrently with FinalizeContext.
func (e *OperatorExecutor) ExtractFreqMap(cb func(name string, m FreqMap)) {
	e.mu.Lock()
	drained := e.freqMaps
	e.freqMaps = make(map[string]FreqMap)
	e.mu.Unlock()

	for _, name := range slices.Sorted(maps.Keys(drained)) {
		cb(name, drained[name])
	}
}

// SetMetaData stores the metadata carried by fs into c.
//
// An unknown metadata tag means the input definition is structurally broken; the executor
// logs it at fatal level, which terminates the process.
func (e *OperatorExecutor) SetMetaData(fs FileSpec, c *RawContext) {
	switch fs.Case {
	case MetadataNotSet:
		c.metadata = Metadata{}
	case MetadataStrVal:
		c.metadata = StringMetadata(fs.StrVal)
	case MetadataI64Val:
		c.metadata = Int64Metadata(fs.I64Val)
	default:
		e.logger.Fatal("invalid metadata tag",
			zap.String("url", fs.URL),
			zap.Int32("tag", int32(fs.Case)),
			zap.Error(fmt.Errorf("%w: unknown metadata tag %s", ErrInvalidFileSpec, fs.Case)),
		)
	}
}

// MetricMap returns a copy of the aggregated metrics.
func (e *OperatorExecutor) MetricMap() map[string]int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return maps.Clone(e.metricMap)
}

// ParseErrors returns the number of parse errors reported by finalized contexts.
func (e *OperatorExecutor) ParseErrors() int64 { return e.parseErrors.Load() }
