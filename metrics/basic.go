package metrics

import (
	"sync"
	"sync/atomic"
)

// BasicProvider keeps instruments in memory. Instruments are created on first use and
// reused for the same name. It backs tests and the CLI summary.
type BasicProvider struct {
	counters   registry[*BasicCounter]
	updowns    registry[*BasicUpDownCounter]
	histograms registry[*BasicHistogram]

	metaMu sync.Mutex
	meta   map[string]Description
}

// NewBasicProvider constructs a new BasicProvider.
func NewBasicProvider() *BasicProvider {
	return &BasicProvider{meta: make(map[string]Description)}
}

// Counter returns the counter registered under name, creating it once.
func (p *BasicProvider) Counter(name string, opts ...InstrumentOption) Counter {
	return p.counters.getOrCreate(name, func() *BasicCounter {
		p.remember(name, opts)
		return &BasicCounter{}
	})
}

// UpDownCounter returns the up/down counter registered under name, creating it once.
func (p *BasicProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	return p.updowns.getOrCreate(name, func() *BasicUpDownCounter {
		p.remember(name, opts)
		return &BasicUpDownCounter{}
	})
}

// Histogram returns the histogram registered under name, creating it once.
func (p *BasicProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	return p.histograms.getOrCreate(name, func() *BasicHistogram {
		p.remember(name, opts)
		return &BasicHistogram{}
	})
}

// CounterValue returns the current value of a counter or up/down counter.
func (p *BasicProvider) CounterValue(name string) (int64, bool) {
	if c, ok := p.counters.lookup(name); ok {
		return c.Snapshot(), true
	}
	if u, ok := p.updowns.lookup(name); ok {
		return u.Snapshot(), true
	}
	return 0, false
}

// HistogramValue returns a snapshot of a histogram.
func (p *BasicProvider) HistogramValue(name string) (HistSnapshot, bool) {
	h, ok := p.histograms.lookup(name)
	if !ok {
		return HistSnapshot{}, false
	}
	return h.Snapshot(), true
}

// Values returns a copy of every counter and up/down counter value keyed by name.
func (p *BasicProvider) Values() map[string]int64 {
	out := make(map[string]int64)
	p.counters.each(func(name string, c *BasicCounter) { out[name] = c.Snapshot() })
	p.updowns.each(func(name string, u *BasicUpDownCounter) { out[name] = u.Snapshot() })
	return out
}

// Describe returns the description an instrument was created with.
func (p *BasicProvider) Describe(name string) (Description, bool) {
	p.metaMu.Lock()
	defer p.metaMu.Unlock()
	cfg, ok := p.meta[name]
	return cfg, ok
}

func (p *BasicProvider) remember(name string, opts []InstrumentOption) {
	cfg := describe(opts)
	p.metaMu.Lock()
	p.meta[name] = cfg
	p.metaMu.Unlock()
}

// registry is a name -> instrument map with a read-locked fast path.
type registry[T any] struct {
	mu sync.RWMutex
	m  map[string]T
}

func (r *registry[T]) lookup(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.m[name]
	return v, ok
}

func (r *registry[T]) getOrCreate(name string, create func() T) T {
	if v, ok := r.lookup(name); ok {
		return v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// re-check after acquiring write lock
	if v, ok := r.m[name]; ok {
		return v
	}
	if r.m == nil {
		r.m = make(map[string]T)
	}
	v := create()
	r.m[name] = v
	return v
}

func (r *registry[T]) each(fn func(string, T)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for k, v := range r.m {
		fn(k, v)
	}
}

// BasicCounter is a thread-safe monotonic counter.
type BasicCounter struct {
	val atomic.Int64
}

func (c *BasicCounter) Add(n int64) { c.val.Add(n) }

// Snapshot returns the current value.
func (c *BasicCounter) Snapshot() int64 { return c.val.Load() }

// BasicUpDownCounter is a thread-safe up/down counter.
type BasicUpDownCounter struct {
	val atomic.Int64
}

func (u *BasicUpDownCounter) Add(n int64) { u.val.Add(n) }

// Snapshot returns the current value.
func (u *BasicUpDownCounter) Snapshot() int64 { return u.val.Load() }

// BasicHistogram tracks count, sum, min and max of recorded values. It keeps no buckets.
type BasicHistogram struct {
	mu    sync.Mutex
	count int64
	sum   float64
	min   float64
	max   float64
}

// Record adds a measurement to the histogram.
func (h *BasicHistogram) Record(v float64) {
	h.mu.Lock()
	if h.count == 0 {
		h.min, h.max = v, v
	} else {
		h.min = min(h.min, v)
		h.max = max(h.max, v)
	}
	h.count++
	h.sum += v
	h.mu.Unlock()
}

// HistSnapshot is an immutable snapshot of a BasicHistogram.
type HistSnapshot struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
	Mean  float64
}

// Snapshot returns a copy of the histogram state.
func (h *BasicHistogram) Snapshot() HistSnapshot {
	h.mu.Lock()
	s := HistSnapshot{Count: h.count, Sum: h.sum, Min: h.min, Max: h.max}
	h.mu.Unlock()
	if s.Count > 0 {
		s.Mean = s.Sum / float64(s.Count)
	}
	return s
}
