package fire

import (
	"image"
	"time"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Classifier consumes one color frame per call and produces a fire Verdict.
//
// A Classifier owns exactly two pieces of cross-call state: the previous
// grayscale frame (for optical flow) and the detection history (for temporal
// consensus). Both are reset by construction. One instance serves one video
// stream; it is NOT safe for concurrent calls without external locking —
// give each stream its own Classifier.
//
// Always call Close to release native OpenCV resources.
type Classifier struct {
	cfg Config

	seg     *segmenter
	flow    *flowField
	flicker *flickerTracker
	history *consensus

	hsv      gocv.Mat
	gray     gocv.Mat
	prevGray gocv.Mat
	hasPrev  bool

	// Counters for metric collection.
	framesSeen      int64
	framesPositive  int64
	lastConfidence  float64
	processDuration time.Duration
}

// New constructs a Classifier from the given configuration. Out-of-range
// configuration values are rejected here, once, rather than per frame.
func New(cfg Config) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid classifier configuration")
	}
	return &Classifier{
		cfg:      cfg,
		seg:      newSegmenter(cfg),
		flow:     newFlowField(cfg),
		flicker:  newFlickerTracker(cfg),
		history:  newConsensus(cfg.ConsensusWindow),
		hsv:      gocv.NewMat(),
		gray:     gocv.NewMat(),
		prevGray: gocv.NewMat(),
	}, nil
}

// Config returns the configuration the classifier was built with.
func (c *Classifier) Config() Config {
	return c.cfg
}

// Process classifies a single BGR frame.
//
// The call never fails: a malformed or empty frame simply contributes a
// negative signal to the consensus window and returns a zero verdict. The
// frame is read but not retained; the caller keeps ownership.
func (c *Classifier) Process(frame gocv.Mat) Verdict {
	started := time.Now()
	defer func() { c.processDuration = time.Since(started) }()

	c.framesSeen++
	if frame.Empty() || frame.Type() != gocv.MatTypeCV8UC3 {
		return Verdict{State: c.history.Push(false)}
	}

	gocv.CvtColor(frame, &c.hsv, gocv.ColorBGRToHSV)
	gocv.CvtColor(frame, &c.gray, gocv.ColorBGRToGray)

	mask := c.seg.Apply(c.hsv)
	maskPixels := gocv.CountNonZero(mask)
	c.flicker.Push(maskPixels)

	candidates := extractCandidates(mask, c.cfg)

	// Flow needs a frame pair; on the very first call the ratios stay 0 so
	// the system cannot fire on the first frame it ever sees.
	if c.hasPrev {
		c.flow.Compute(c.prevGray, c.gray)
	} else {
		c.flow.Invalidate()
	}
	c.gray.CopyTo(&c.prevGray)
	c.hasPrev = true

	verdict := c.aggregate(frame, mask, candidates, maskPixels)
	verdict.State = c.history.Push(verdict.FrameFire)
	verdict.IsFire = verdict.State == StateConfirmed

	if verdict.FrameFire {
		c.framesPositive++
	}
	c.lastConfidence = verdict.Confidence
	return verdict
}

// aggregate folds per-candidate signals into the frame-level flag and
// confidence score.
func (c *Classifier) aggregate(frame, mask gocv.Mat, candidates []Candidate, maskPixels int) Verdict {
	v := Verdict{
		AreaVariance: c.flicker.Variance(),
		MaskCoverage: float64(maskPixels) / float64(frame.Rows()*frame.Cols()),
	}

	bestMotion := 0.0
	bestIrregularity := 0.0
	for i := range candidates {
		cand := &candidates[i]
		cand.MotionRatio = c.flow.RegionMotionRatio(cand)
		cand.MeanSaturation, cand.MeanValue = c.regionMeanSV(mask, cand.Box)

		v.Regions = append(v.Regions, cand.Box)

		if cand.MotionRatio > c.cfg.MinMotionRatio {
			v.FlickerPresent = true
		}
		if cand.MotionRatio >= bestMotion {
			bestMotion = cand.MotionRatio
			bestIrregularity = 1 - cand.Circularity
		}

		if c.candidatePositive(cand) {
			v.FrameFire = true
		}
	}
	v.MotionRatio = bestMotion

	if v.FrameFire && c.cfg.Mode == ModeFull && !c.flicker.Pulsing() {
		v.FrameFire = false
	}

	v.Confidence = c.confidence(v.MaskCoverage, bestMotion, bestIrregularity)
	switch {
	case v.Confidence > c.cfg.CriticalConfidence:
		v.AlertLevel = AlertCritical
	case v.Confidence > c.cfg.WarningConfidence:
		v.AlertLevel = AlertWarning
	}
	return v
}

// candidatePositive applies the mode's evidence requirements to one
// surviving candidate.
func (c *Classifier) candidatePositive(cand *Candidate) bool {
	if cand.MeanSaturation < c.cfg.MinMeanSaturation || cand.MeanValue < c.cfg.MinMeanValue {
		return false
	}
	if c.cfg.Mode == ModeColorShape {
		return true
	}
	return cand.MotionRatio > c.cfg.MinMotionRatio
}

// confidence blends the three frame signals into a bounded score.
//
// Weights: 0.25 mask coverage (saturating at 10% of the frame), 0.45 best
// motion ratio, 0.30 best shape irregularity. Each term is in [0,1] and the
// blend is monotonic in every input.
func (c *Classifier) confidence(coverage, motion, irregularity float64) float64 {
	coverageTerm := coverage * 10
	if coverageTerm > 1 {
		coverageTerm = 1
	}
	score := 0.25*coverageTerm + 0.45*motion + 0.30*irregularity
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// regionMeanSV returns the mean saturation and value of masked pixels inside
// the given box.
func (c *Classifier) regionMeanSV(mask gocv.Mat, box image.Rectangle) (float64, float64) {
	hsvRegion := c.hsv.Region(box)
	defer hsvRegion.Close()
	maskRegion := mask.Region(box)
	defer maskRegion.Close()

	mean := hsvRegion.MeanWithMask(maskRegion)
	return mean.Val2, mean.Val3
}

// Streak returns the number of consecutive positive frames so far.
func (c *Classifier) Streak() int {
	return c.history.Streak()
}

// State returns the current consensus state.
func (c *Classifier) State() State {
	return c.history.State()
}

// CollectMetrics implements the profiler.MetricsCollector interface so the
// runtime profiler can report classifier counters alongside system stats.
func (c *Classifier) CollectMetrics() map[string]float64 {
	return map[string]float64{
		"frames_total":        float64(c.framesSeen),
		"frames_positive":     float64(c.framesPositive),
		"consecutive_streak":  float64(c.history.Streak()),
		"last_confidence":     c.lastConfidence,
		"frame_processing_ms": float64(c.processDuration.Nanoseconds()) / 1e6,
	}
}

// Close releases all native OpenCV resources held by the classifier.
func (c *Classifier) Close() {
	c.seg.Close()
	c.flow.Close()
	c.hsv.Close()
	c.gray.Close()
	c.prevGray.Close()
}
