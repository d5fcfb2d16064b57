package fibers

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlockingCounter_ReleasesAfterAllDecrements(t *testing.T) {
	c := NewBlockingCounter(3)
	waited := goWait(c.Wait)

	c.Dec()
	c.Dec()
	requireBlocked(t, waited, "one decrement outstanding")

	go c.Dec()
	requireReleased(t, waited, "all decrements done")
	assert.Equal(t, int64(0), c.Count())
}

func TestBlockingCounter_AddExtendsTarget(t *testing.T) {
	c := NewBlockingCounter(3)
	waited := goWait(c.Wait)

	c.Dec()
	c.Add(2)
	for range 3 {
		c.Dec()
	}
	requireBlocked(t, waited, "four of five decrements done")

	c.Dec()
	requireReleased(t, waited, "five decrements done")
}

func TestBlockingCounter_ZeroReturnsImmediately(t *testing.T) {
	c := NewBlockingCounter(0)
	requireReleased(t, goWait(c.Wait), "zero counter")
}

func TestBlockingCounter_ConcurrentDec(t *testing.T) {
	const n = 100
	c := NewBlockingCounter(n)
	cp := c

	var wg sync.WaitGroup
	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			cp.Dec()
		}()
	}

	requireReleased(t, goWait(c.Wait), "concurrent decrements")
	wg.Wait()
}
