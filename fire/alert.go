package fire

import (
	"time"

	"github.com/google/uuid"
)

// Event is an emitted fire alert. IDs let downstream consumers deduplicate
// and correlate alerts across log sinks.
type Event struct {
	ID         uuid.UUID
	Time       time.Time
	Confidence float64
	Level      AlertLevel
}

// Alerter rate-limits alert emission so a confirmed fire does not flood the
// caller with one event per frame. It emits at most one event per cooldown
// period while the classifier stays confirmed.
type Alerter struct {
	cooldown time.Duration
	last     time.Time
	now      func() time.Time
}

// DefaultAlertCooldown is the default minimum spacing between alert events.
const DefaultAlertCooldown = 2 * time.Second

// NewAlerter returns an Alerter with the given cooldown. A non-positive
// cooldown falls back to DefaultAlertCooldown.
func NewAlerter(cooldown time.Duration) *Alerter {
	if cooldown <= 0 {
		cooldown = DefaultAlertCooldown
	}
	return &Alerter{cooldown: cooldown, now: time.Now}
}

// Observe inspects a verdict and returns an Event when one should be
// emitted: the verdict must be a confirmed fire and the cooldown must have
// elapsed since the previous event. Returns nil otherwise.
func (a *Alerter) Observe(v Verdict) *Event {
	if !v.IsFire {
		return nil
	}
	now := a.now()
	if !a.last.IsZero() && now.Sub(a.last) < a.cooldown {
		return nil
	}
	a.last = now
	return &Event{
		ID:         uuid.New(),
		Time:       now,
		Confidence: v.Confidence,
		Level:      v.AlertLevel,
	}
}
