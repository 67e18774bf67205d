package fire

// consensus is the classifier's only persistent decision state: a
// fixed-capacity window of recent per-frame fire flags. The verdict is
// confirmed only while every slot in a full window is positive; a single
// negative frame resets the streak. There is no decay or hysteresis.
type consensus struct {
	window []bool
	size   int
	state  State
}

func newConsensus(size int) *consensus {
	return &consensus{
		window: make([]bool, 0, size),
		size:   size,
		state:  StateBelowThreshold,
	}
}

// Push folds a frame-level flag into the window and returns the resulting
// state. The window never exceeds its configured size.
func (c *consensus) Push(frameFire bool) State {
	if len(c.window) == c.size {
		copy(c.window, c.window[1:])
		c.window = c.window[:c.size-1]
	}
	c.window = append(c.window, frameFire)

	c.state = StateBelowThreshold
	if len(c.window) == c.size {
		confirmed := true
		for _, v := range c.window {
			if !v {
				confirmed = false
				break
			}
		}
		if confirmed {
			c.state = StateConfirmed
		}
	}
	return c.state
}

// State returns the current consensus state without mutating the window.
func (c *consensus) State() State {
	return c.state
}

// Streak returns the number of consecutive positive frames ending at the
// most recent one. Diagnostic only.
func (c *consensus) Streak() int {
	n := 0
	for i := len(c.window) - 1; i >= 0; i-- {
		if !c.window[i] {
			break
		}
		n++
	}
	return n
}
