package pool

import "sync"

// fixed creates at most capacity objects. Once all of them are handed out, Get blocks
// until one is returned with Put.
type fixed[T any] struct {
	available chan T
	newFn     func() T

	mu       sync.Mutex
	created  uint
	capacity uint
}

// NewFixed returns a pool that never holds more than capacity objects.
// With capacity 0 every Get blocks forever.
func NewFixed[T any](capacity uint, newFn func() T) Pool[T] {
	return &fixed[T]{
		available: make(chan T, capacity),
		newFn:     newFn,
		capacity:  capacity,
	}
}

func (p *fixed[T]) Get() T {
	select {
	case el := <-p.available:
		return el
	default:
	}

	p.mu.Lock()
	if p.created < p.capacity {
		p.created++
		p.mu.Unlock()
		return p.newFn()
	}
	p.mu.Unlock()

	return <-p.available
}

// Put must only be called with objects obtained from Get.
func (p *fixed[T]) Put(el T) {
	p.available <- el
}
