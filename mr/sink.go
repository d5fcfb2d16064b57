package mr

import (
	"slices"
	"sync"
)

// Sink receives the records a worker context writes, grouped by output shard.
// Implementations must be safe for concurrent use: every worker flushes into the same sink.
type Sink interface {
	Write(shard uint32, records []string) error
}

// DiscardSink drops every record.
type DiscardSink struct{}

func (DiscardSink) Write(uint32, []string) error { return nil }

// MemorySink keeps records in memory, per shard, in arrival order.
type MemorySink struct {
	mu     sync.Mutex
	shards map[uint32][]string
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{shards: make(map[uint32][]string)}
}

func (s *MemorySink) Write(shard uint32, records []string) error {
	s.mu.Lock()
	s.shards[shard] = append(s.shards[shard], records...)
	s.mu.Unlock()
	return nil
}

// Records returns a copy of the records written to shard.
func (s *MemorySink) Records(shard uint32) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.shards[shard])
}

// Len returns the number of records across all shards.
func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.shards {
		n += len(r)
	}
	return n
}
