package fibers

import "sync/atomic"

// WaitDirective tells Done.Wait what to do with the flag once it has been observed set.
type WaitDirective int

const (
	// AndNothing leaves the flag set after Wait returns.
	AndNothing WaitDirective = iota
	// AndReset clears the flag before Wait returns so the same Done can serve the next round.
	AndReset
)

// Done is a resettable one-shot flag that any number of goroutines can wait on.
//
// Done is a handle: copies share one underlying flag, and the flag stays alive while any
// copy is reachable. Notify never blocks, so it is safe to call from code that must not
// be suspended. Create a Done with NewDone; the zero value is not usable.
type Done struct {
	impl *doneState
}

type doneState struct {
	ec    eventCount
	ready atomic.Bool
}

// NewDone returns a Done in the unset state.
func NewDone() Done {
	return Done{impl: &doneState{}}
}

// Notify sets the flag and wakes all waiters. It is idempotent.
func (d Done) Notify() {
	d.impl.ready.Store(true)
	d.impl.ec.notify()
}

// Wait suspends the calling goroutine until the flag is set.
// With AndReset the flag is cleared before returning, so a second Wait blocks until
// the next Notify.
func (d Done) Wait(directive WaitDirective) {
	d.impl.ec.await(d.impl.ready.Load)
	if directive == AndReset {
		d.impl.ready.Store(false)
	}
}

// Reset clears the flag.
// It must not race with a Wait(AndReset) that has already observed the flag set.
func (d Done) Reset() { d.impl.ready.Store(false) }

// IsReady reports whether the flag is currently set.
func (d Done) IsReady() bool { return d.impl.ready.Load() }
