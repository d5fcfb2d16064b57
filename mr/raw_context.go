package mr

import (
	"errors"
	"maps"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/ygrebnov/errorc"
)

// RawContext is the state of one worker processing one share of a stage's input: its
// metrics, frequency maps, parse error count, buffered output and input metadata.
//
// A RawContext belongs to a single goroutine until it is passed to
// OperatorExecutor.FinalizeContext, which takes ownership of its frequency maps.
type RawContext struct {
	metricMap   map[string]int64
	freqMaps    map[string]FreqMap
	parseErrors int64
	itemWrites  int64
	metadata    Metadata

	// frequency maps finalized by the previous stage; set by RegisterContext.
	finalizedMaps FreqMapRegistry

	sink    Sink
	shards  uint32
	pending map[uint32][]string
}

// NewRawContext returns a context writing into sink over the given number of output
// shards. A nil sink discards output; zero shards means one.
func NewRawContext(sink Sink, shards uint32) *RawContext {
	if sink == nil {
		sink = DiscardSink{}
	}
	return &RawContext{
		metricMap: make(map[string]int64),
		freqMaps:  make(map[string]FreqMap),
		sink:      sink,
		shards:    max(shards, 1),
		pending:   make(map[uint32][]string),
	}
}

// Inc increments the named metric by one.
func (c *RawContext) Inc(name string) { c.metricMap[name]++ }

// IncBy increments the named metric by n.
func (c *RawContext) IncBy(name string, n int64) { c.metricMap[name] += n }

// Metric returns the local value of the named metric.
func (c *RawContext) Metric(name string) int64 { return c.metricMap[name] }

// FreqMap returns the local frequency map registered under name, creating it on first use.
func (c *RawContext) FreqMap(name string) FreqMap {
	m, ok := c.freqMaps[name]
	if !ok {
		if c.freqMaps == nil {
			c.freqMaps = make(map[string]FreqMap)
		}
		m = make(FreqMap)
		c.freqMaps[name] = m
	}
	return m
}

// FindFinalizedMap looks up a frequency map produced by the previous stage.
// The returned map is shared by all workers and must not be modified.
func (c *RawContext) FindFinalizedMap(name string) (FreqMap, bool) {
	return c.finalizedMaps.Find(name)
}

// IncParseErrors counts one record that could not be parsed.
func (c *RawContext) IncParseErrors() { c.parseErrors++ }

// ParseErrors returns the number of records that could not be parsed.
func (c *RawContext) ParseErrors() int64 { return c.parseErrors }

// ItemWrites returns the number of records written.
func (c *RawContext) ItemWrites() int64 { return c.itemWrites }

// MetaData returns the metadata of the input this context processes.
func (c *RawContext) MetaData() Metadata { return c.metadata }

// Shards returns the number of output shards.
func (c *RawContext) Shards() uint32 { return c.shards }

// Write buffers record for the shard that key hashes to.
func (c *RawContext) Write(key, record string) {
	c.WriteShard(ShardOf(key, c.shards), record)
}

// WriteShard buffers record for an explicit shard. Out of range shards wrap around.
func (c *RawContext) WriteShard(shard uint32, record string) {
	shard %= c.shards
	c.pending[shard] = append(c.pending[shard], record)
	c.itemWrites++
}

// Flush hands all buffered records to the sink, lowest shard first.
// Records of shards that failed are dropped.
func (c *RawContext) Flush() error {
	var errs []error
	for _, shard := range slices.Sorted(maps.Keys(c.pending)) {
		if err := c.sink.Write(shard, c.pending[shard]); err != nil {
			errs = append(errs, errorc.With(
				errors.Join(ErrFlush, err),
				errorc.String("shard", strconv.FormatUint(uint64(shard), 10)),
			))
		}
		delete(c.pending, shard)
	}
	return errors.Join(errs...)
}

// ShardOf maps key to one of shards output shards.
func ShardOf(key string, shards uint32) uint32 {
	return uint32(xxhash.Sum64String(key) % uint64(max(shards, 1)))
}
