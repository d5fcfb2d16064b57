package fibers

const Namespace = "fibers"

// contract violation messages, raised only in debug builds.
const (
	errCounterUnderflow   = Namespace + ": BlockingCounter.Dec called more times than the outstanding count"
	errConcurrentProducer = Namespace + ": concurrent Emplace on a single-producer Cell"
	errMoverEmpty         = Namespace + ": ResultMover.Get called without a pending result"
)
