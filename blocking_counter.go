package fibers

import "sync/atomic"

// BlockingCounter releases its waiters once it has been decremented down to zero.
// The target can grow with Add while work is still being discovered.
//
// Like Done, BlockingCounter is a handle; copies share the same counter.
type BlockingCounter struct {
	impl *counterState
}

type counterState struct {
	ec    eventCount
	count atomic.Int64
}

// NewBlockingCounter returns a counter that requires count calls to Dec.
func NewBlockingCounter(count uint) BlockingCounter {
	c := BlockingCounter{impl: &counterState{}}
	c.impl.count.Store(int64(count))
	return c
}

// Dec decrements the counter and wakes all waiters when it reaches zero.
// Calling Dec more times than the outstanding count is a caller error; debug builds panic.
func (c BlockingCounter) Dec() {
	n := c.impl.count.Add(-1)
	switch {
	case n == 0:
		c.impl.ec.notify()
	case n < 0 && debugAssertions:
		panic(errCounterUnderflow)
	}
}

// Add raises the number of outstanding decrements by delta.
func (c BlockingCounter) Add(delta uint) {
	c.impl.count.Add(int64(delta))
}

// Wait suspends the calling goroutine until the counter reaches zero.
// It returns immediately when the counter is already zero.
func (c BlockingCounter) Wait() {
	c.impl.ec.await(func() bool { return c.impl.count.Load() == 0 })
}

// Count returns the number of outstanding decrements. The value may be stale.
func (c BlockingCounter) Count() int64 { return c.impl.count.Load() }
