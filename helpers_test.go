package fibers

import (
	"testing"
	"time"
)

const (
	blockedFor = 50 * time.Millisecond
	wakeWithin = time.Second
)

// goWait runs fn in its own goroutine and returns a channel closed when fn returns.
func goWait(fn func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	return done
}

// requireBlocked fails the test if ch closes within blockedFor.
func requireBlocked(t *testing.T, ch <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-ch:
		t.Fatalf("returned early: %s", msg)
	case <-time.After(blockedFor):
	}
}

// requireReleased fails the test if ch does not close within wakeWithin.
func requireReleased(t *testing.T, ch <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(wakeWithin):
		t.Fatalf("still blocked: %s", msg)
	}
}
