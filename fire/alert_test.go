package fire

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlerterIgnoresNegativeVerdicts(t *testing.T) {
	a := NewAlerter(time.Second)
	assert.Nil(t, a.Observe(Verdict{IsFire: false, Confidence: 0.99}))
}

func TestAlerterCooldown(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := NewAlerter(2 * time.Second)
	a.now = func() time.Time { return now }

	fire := Verdict{IsFire: true, Confidence: 0.8, AlertLevel: AlertWarning}

	ev := a.Observe(fire)
	require.NotNil(t, ev)
	assert.NotEqual(t, uuid.Nil, ev.ID)
	assert.Equal(t, now, ev.Time)
	assert.Equal(t, 0.8, ev.Confidence)
	assert.Equal(t, AlertWarning, ev.Level)

	// Still inside the cooldown: suppressed.
	now = now.Add(1500 * time.Millisecond)
	assert.Nil(t, a.Observe(fire))

	// Cooldown elapsed: a fresh event with a fresh ID.
	now = now.Add(time.Second)
	ev2 := a.Observe(fire)
	require.NotNil(t, ev2)
	assert.NotEqual(t, ev.ID, ev2.ID)
}

func TestAlerterDefaultCooldown(t *testing.T) {
	a := NewAlerter(0)
	assert.Equal(t, DefaultAlertCooldown, a.cooldown)

	a = NewAlerter(-time.Second)
	assert.Equal(t, DefaultAlertCooldown, a.cooldown)
}
