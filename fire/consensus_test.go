package fire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsensusConfirmsOnlyWithFullWindow(t *testing.T) {
	c := newConsensus(3)

	assert.Equal(t, StateBelowThreshold, c.Push(true))
	assert.Equal(t, StateBelowThreshold, c.Push(true))
	assert.Equal(t, StateConfirmed, c.Push(true))
	assert.Equal(t, StateConfirmed, c.State())
}

func TestConsensusSingleMissResets(t *testing.T) {
	c := newConsensus(3)
	c.Push(true)
	c.Push(true)
	c.Push(true)
	assert.Equal(t, StateConfirmed, c.State())

	assert.Equal(t, StateBelowThreshold, c.Push(false))

	// The miss lingers in the window: two positives are not enough.
	assert.Equal(t, StateBelowThreshold, c.Push(true))
	assert.Equal(t, StateBelowThreshold, c.Push(true))
	assert.Equal(t, StateConfirmed, c.Push(true))
}

func TestConsensusWindowOfOne(t *testing.T) {
	c := newConsensus(1)
	assert.Equal(t, StateConfirmed, c.Push(true))
	assert.Equal(t, StateBelowThreshold, c.Push(false))
	assert.Equal(t, StateConfirmed, c.Push(true))
}

func TestConsensusStreak(t *testing.T) {
	c := newConsensus(5)
	assert.Equal(t, 0, c.Streak())

	c.Push(true)
	c.Push(true)
	assert.Equal(t, 2, c.Streak())

	c.Push(false)
	assert.Equal(t, 0, c.Streak())

	c.Push(true)
	assert.Equal(t, 1, c.Streak())
}

func TestConsensusAlternatingNeverConfirms(t *testing.T) {
	c := newConsensus(3)
	for i := 0; i < 20; i++ {
		state := c.Push(i%2 == 0)
		assert.Equal(t, StateBelowThreshold, state, "push %d", i)
	}
}
