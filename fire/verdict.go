package fire

import (
	"fmt"
	"image"
)

// AlertLevel grades the urgency of a frame's detection result.
type AlertLevel int

const (
	// AlertNone means nothing fire-like was scored in this frame.
	AlertNone AlertLevel = iota
	// AlertWarning means the frame confidence crossed the warning threshold.
	AlertWarning
	// AlertCritical means the frame confidence crossed the critical threshold.
	AlertCritical
)

// String returns a human-readable alert level name.
func (l AlertLevel) String() string {
	switch l {
	case AlertWarning:
		return "warning"
	case AlertCritical:
		return "critical"
	default:
		return "none"
	}
}

// State is the classifier's temporal consensus state.
type State int

const (
	// StateBelowThreshold means the consensus window is not yet full of
	// positive frames. Initial state.
	StateBelowThreshold State = iota
	// StateConfirmed means every frame in the consensus window was positive.
	StateConfirmed
)

// String returns a human-readable state name.
func (s State) String() string {
	if s == StateConfirmed {
		return "confirmed"
	}
	return "below-threshold"
}

// Verdict is the per-frame classification result. It is produced once per
// Process call and not retained by the classifier; callers own it.
type Verdict struct {
	// IsFire is the temporally-confirmed verdict: true only after
	// ConsensusWindow consecutive positive frames.
	IsFire bool
	// FrameFire is this frame's standalone decision before consensus.
	FrameFire bool
	// Confidence is the frame score in [0,1].
	Confidence float64
	// MotionRatio is the best surviving candidate's moving-pixel fraction.
	MotionRatio float64
	// FlickerPresent reports whether any surviving candidate's motion ratio
	// exceeded the configured minimum.
	FlickerPresent bool
	// AreaVariance is the normalized variance of the mask area history, the
	// flame-pulsation diagnostic used by ModeFull.
	AreaVariance float64
	// AlertLevel grades Confidence against the configured thresholds.
	AlertLevel AlertLevel
	// MaskCoverage is the fraction of frame pixels inside the color mask.
	MaskCoverage float64
	// Regions holds the bounding boxes of surviving candidates so the
	// caller can draw overlays. Discovery order; not significant.
	Regions []image.Rectangle
	// State is the consensus state after this frame was folded in.
	State State
}

// String summarizes the verdict for log lines.
func (v Verdict) String() string {
	return fmt.Sprintf("fire=%t conf=%.2f motion=%.2f flicker=%t alert=%s state=%s",
		v.IsFire, v.Confidence, v.MotionRatio, v.FlickerPresent, v.AlertLevel, v.State)
}
