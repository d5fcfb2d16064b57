package fibers

import "sync"

// Semaphore is a counting semaphore whose Wait can consume several units at once.
//
// Signal wakes every waiter and each waiter re-checks its own threshold, so a waiter asking
// for many units is not starved behind waiters asking for one. Semaphore must not be copied
// after first use, and must outlive every goroutine suspended in Wait.
type Semaphore struct {
	mu    sync.Mutex
	count uint32
	ec    eventCount
}

// NewSemaphore returns a semaphore holding count units.
func NewSemaphore(count uint32) *Semaphore {
	return &Semaphore{count: count}
}

// Wait suspends the calling goroutine until n units are available, then consumes them.
func (s *Semaphore) Wait(n uint32) {
	s.ec.await(func() bool { return s.tryTake(n) })
}

// WaitLocked is Wait for callers already inside a critical section guarded by l.
// l is released while the goroutine is suspended and is held again when WaitLocked returns.
func (s *Semaphore) WaitLocked(l sync.Locker, n uint32) {
	for !s.tryTake(n) {
		ch := s.ec.waitChan()
		if s.tryTake(n) {
			return
		}
		l.Unlock()
		<-ch
		l.Lock()
	}
}

// Signal releases n units and wakes all waiters.
func (s *Semaphore) Signal(n uint32) {
	s.mu.Lock()
	s.count += n
	s.mu.Unlock()

	s.ec.notify()
}

// Available returns the number of free units. The value may be stale.
func (s *Semaphore) Available() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *Semaphore) tryTake(n uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count < n {
		return false
	}
	s.count -= n
	return true
}
