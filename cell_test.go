package fibers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell_EmplaceBlocksUntilClear(t *testing.T) {
	var c Cell[string]
	require.True(t, c.IsEmpty())

	c.Emplace("first")
	assert.False(t, c.IsEmpty())

	second := goWait(func() { c.Emplace("second") })
	requireBlocked(t, second, "cell is full")

	assert.Equal(t, "first", *c.Value())
	c.Clear()
	requireReleased(t, second, "cell cleared")
	assert.Equal(t, "second", *c.Value())
}

func TestCell_WaitTillFullDoesNotConsume(t *testing.T) {
	var c Cell[int]

	waited := goWait(c.WaitTillFull)
	requireBlocked(t, waited, "empty cell")

	c.Emplace(7)
	requireReleased(t, waited, "value emplaced")

	// still full until Clear
	requireReleased(t, goWait(c.WaitTillFull), "value not consumed")
	assert.Equal(t, 7, *c.Value())
}

func TestCell_ValueIsMutableInPlace(t *testing.T) {
	var c Cell[[]int]
	c.Emplace([]int{1})
	v := c.Value()
	*v = append(*v, 2)
	assert.Equal(t, []int{1, 2}, *c.Value())
}

func TestCell_ProducerConsumerHandoff(t *testing.T) {
	const n = 500
	var c Cell[int]

	go func() {
		for i := range n {
			c.Emplace(i)
		}
	}()

	got := make([]int, 0, n)
	for range n {
		c.WaitTillFull()
		got = append(got, *c.Value())
		c.Clear()
	}

	require.Len(t, got, n)
	for i, v := range got {
		require.Equal(t, i, v, "each Emplace is observed exactly once, in order")
	}
}
