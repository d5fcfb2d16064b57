package fibers

import "sync/atomic"

// eventCount wakes goroutines waiting for a predicate to become true.
// A waiter takes the current wake channel, re-checks its predicate and only then blocks;
// notify swaps the channel out and closes it. State changes must be published before
// notify is called, which makes the re-check sufficient to avoid lost wake-ups.
// notify never blocks and never takes a lock.
type eventCount struct {
	wake atomic.Pointer[chan struct{}]
}

func (e *eventCount) waitChan() <-chan struct{} {
	for {
		if p := e.wake.Load(); p != nil {
			return *p
		}
		ch := make(chan struct{})
		if e.wake.CompareAndSwap(nil, &ch) {
			return ch
		}
	}
}

// notify wakes every goroutine currently blocked in await.
func (e *eventCount) notify() {
	if p := e.wake.Swap(nil); p != nil {
		close(*p)
	}
}

// await suspends the calling goroutine until ready returns true.
func (e *eventCount) await(ready func() bool) {
	for !ready() {
		ch := e.waitChan()
		if ready() {
			return
		}
		<-ch
	}
}
