package fibers

// ResultMover carries the result of a deferred computation across a suspension point.
// The computation runs wherever Apply is called; Get hands the result to the caller
// exactly once and drops the mover's reference to it.
//
// The zero value is ready for use. A ResultMover is stack-scoped scratch space and is not
// safe for concurrent use: publish it with a Done (see Await).
type ResultMover[R any] struct {
	r  R
	ok bool
}

// Apply runs fn and stores its result.
func (m *ResultMover[R]) Apply(fn func() R) {
	m.r = fn()
	m.ok = true
}

// Get transfers the stored result out of the mover.
func (m *ResultMover[R]) Get() R {
	if debugAssertions && !m.ok {
		panic(errMoverEmpty)
	}
	r := m.r
	var zero R
	m.r, m.ok = zero, false
	return r
}

// VoidMover is the ResultMover for computations that produce no value.
type VoidMover struct{}

// Apply runs fn.
func (VoidMover) Apply(fn func()) { fn() }

// Get does nothing; it exists so callers can treat both movers the same way.
func (VoidMover) Get() {}

// Await runs fn through launch, suspends until it completes and returns its result.
// launch decides where fn executes (a dedicated goroutine, a worker loop, a pool);
// a nil launch starts a new goroutine.
func Await[R any](launch func(func()), fn func() R) R {
	if launch == nil {
		launch = func(f func()) { go f() }
	}

	var m ResultMover[R]
	done := NewDone()
	launch(func() {
		m.Apply(fn)
		done.Notify()
	})
	done.Wait(AndNothing)
	return m.Get()
}
