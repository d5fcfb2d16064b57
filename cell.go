package fibers

import "sync/atomic"

// Cell is a single-slot rendezvous between exactly one producer and one consumer.
//
// Unlike an unbuffered channel, a value handed to Emplace is never lost or duplicated:
// it sits in the cell until the consumer calls Clear. The consumer reads it in place via
// Value. Concurrent producers or concurrent consumers are not supported; debug builds
// detect concurrent producers.
//
// The zero value is an empty cell ready for use.
type Cell[T any] struct {
	val       T
	full      atomic.Bool
	ec        eventCount
	producers atomic.Int32
}

// IsEmpty reports whether the cell holds no value.
func (c *Cell[T]) IsEmpty() bool { return !c.full.Load() }

// Emplace suspends the producer until the cell is empty, then stores v and wakes the consumer.
func (c *Cell[T]) Emplace(v T) {
	if debugAssertions {
		n := c.producers.Add(1)
		defer c.producers.Add(-1)
		if n > 1 {
			panic(errConcurrentProducer)
		}
	}

	c.ec.await(c.IsEmpty)
	c.val = v
	c.full.Store(true)
	c.ec.notify()
}

// WaitTillFull suspends the consumer until a value is present. It does not consume it.
func (c *Cell[T]) WaitTillFull() {
	c.ec.await(c.full.Load)
}

// Value returns a pointer to the stored value.
// It is valid only between WaitTillFull returning and the matching Clear.
func (c *Cell[T]) Value() *T { return &c.val }

// Clear empties the cell and wakes a producer blocked in Emplace.
func (c *Cell[T]) Clear() {
	var zero T
	c.val = zero
	c.full.Store(false)
	c.ec.notify()
}
