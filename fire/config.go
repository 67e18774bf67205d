// Package fire implements a heuristic, multi-criteria flame classifier for
// color video frames.
//
// The classifier combines four independent signals before it will confirm a
// fire: HSV color segmentation, contour shape analysis, optical-flow motion
// within candidate regions, and temporal consensus across consecutive frames.
// Each signal on its own is easy to fool (a red shirt, a lens flare, a waved
// hand); requiring all of them together is what keeps the false-positive rate
// workable on a cheap webcam.
//
// Pipeline Overview:
//
// ┌──────────────┐
// │ Input Frame  │
// └──────┬───────┘
// ┌────────────────────────────────────┐
// │ Color Segmentation (HSV in-range,  │
// │ exclusion bands, morphology)       │
// └──────┬─────────────────────────────┘
// ┌────────────────────────────────────┐
// │ Candidate Extraction (contours)    │
// │ + Shape Filter (area, circularity) │
// └──────┬─────────────────────────────┘
// ┌────────────────────────────────────┐
// │ Motion / Flicker (Farneback flow)  │
// └──────┬─────────────────────────────┘
// ┌────────────────────────────────────┐
// │ Frame Aggregation + Scoring        │
// └──────┬─────────────────────────────┘
// ┌────────────────────────────────────┐
// │ Temporal Consensus (N-frame window)│
// └────────────────────────────────────┘
package fire

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Band is an inclusive HSV range in OpenCV units: hue in [0,180],
// saturation and value in [0,255].
type Band struct {
	HueLo, HueHi float64
	SatLo, SatHi float64
	ValLo, ValHi float64
}

// Lower returns the band's lower bound as a gocv.Scalar for InRange calls.
func (b Band) Lower() gocv.Scalar {
	return gocv.NewScalar(b.HueLo, b.SatLo, b.ValLo, 0)
}

// Upper returns the band's upper bound as a gocv.Scalar for InRange calls.
func (b Band) Upper() gocv.Scalar {
	return gocv.NewScalar(b.HueHi, b.SatHi, b.ValHi, 0)
}

func (b Band) validate() error {
	if b.HueLo < 0 || b.HueHi > 180 || b.HueLo > b.HueHi {
		return errors.Errorf("hue range [%.0f,%.0f] outside [0,180]", b.HueLo, b.HueHi)
	}
	if b.SatLo < 0 || b.SatHi > 255 || b.SatLo > b.SatHi {
		return errors.Errorf("saturation range [%.0f,%.0f] outside [0,255]", b.SatLo, b.SatHi)
	}
	if b.ValLo < 0 || b.ValHi > 255 || b.ValLo > b.ValHi {
		return errors.Errorf("value range [%.0f,%.0f] outside [0,255]", b.ValLo, b.ValHi)
	}
	return nil
}

// Mode selects which heuristic combination must agree before a frame counts
// as a positive detection. Color segmentation and the shape filter always
// run; the modes differ in how much corroborating evidence they demand.
type Mode int

const (
	// ModeColorShape accepts a frame on color and shape alone. Intended for
	// calibration and tuning sessions, not unattended monitoring.
	ModeColorShape Mode = iota
	// ModeColorShapeMotion additionally requires flicker motion inside a
	// candidate region. This is the default.
	ModeColorShapeMotion
	// ModeFull additionally requires the mask-area variance signal, which
	// tracks the pulsation of the flame silhouette over the last several
	// frames. Strictest and slowest to confirm.
	ModeFull
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeColorShape:
		return "color+shape"
	case ModeColorShapeMotion:
		return "color+shape+motion"
	case ModeFull:
		return "color+shape+motion+flicker"
	default:
		return "unknown"
	}
}

// Config holds every tunable parameter of the classifier. All thresholds are
// fixed at construction; nothing is re-validated per frame.
type Config struct {
	// Mode selects the active heuristic combination.
	Mode Mode

	// FireBands are the HSV ranges treated as flame-colored. Red wraps
	// around the hue circle, so two bands are normally needed.
	FireBands []Band
	// ExcludeBands are HSV ranges force-cleared from the mask even where
	// they overlap a fire band. Used to reject muted reds: cloth, skin,
	// produce.
	ExcludeBands []Band

	// MorphKernelSize is the side of the elliptical structuring element
	// used to open and close the color mask.
	MorphKernelSize int
	// MorphIterations is the iteration count for each morphology pass.
	MorphIterations int

	// MinFireArea is the minimum candidate contour area in pixels,
	// inclusive. Smaller blobs are treated as noise.
	MinFireArea float64
	// MaxFireArea is the maximum candidate contour area in pixels. Larger
	// blobs are almost always a frame-filling false match (sunset, wall).
	MaxFireArea float64

	// CircularityLow rejects degenerate thin-line artifacts; CircularityHigh
	// rejects near-perfect circles such as lens flare. Real flames land in
	// between, with jagged irregular silhouettes.
	CircularityLow  float64
	CircularityHigh float64

	// AspectRatioLow/High bound the candidate's min-area-rect aspect ratio.
	// Zero values disable the check.
	AspectRatioLow  float64
	AspectRatioHigh float64

	// SolidityLow/High bound contour area over convex-hull area. Flames are
	// jagged (low solidity); hands and cloth are smooth. Zero values
	// disable the check.
	SolidityLow  float64
	SolidityHigh float64

	// OverlapIoU drops a candidate whose bounding box overlaps an already
	// accepted, larger candidate beyond this ratio.
	OverlapIoU float64

	// FlowNoiseFloor is the optical-flow magnitude below which a pixel is
	// considered static.
	FlowNoiseFloor float64
	// MinMotionRatio is the fraction of a candidate's bounding box that
	// must exceed FlowNoiseFloor for the region to count as flickering.
	MinMotionRatio float64

	// MinMeanSaturation and MinMeanValue are the confidence floor for a
	// candidate's mean color inside the mask. A candidate that passed the
	// in-range test but averages out dull is dropped at aggregation.
	MinMeanSaturation float64
	MinMeanValue      float64

	// FlickerWindow is how many recent mask pixel counts feed the
	// area-variance flicker signal (ModeFull only). Must be at least 2 so
	// a variance is defined.
	FlickerWindow int
	// MinFlickerVariance is the normalized variance (var / (mean+1)) the
	// mask area history must exceed to count as flame pulsation.
	MinFlickerVariance float64

	// ConsensusWindow is how many consecutive positive frames are required
	// before the classifier confirms a fire. One negative frame resets it.
	ConsensusWindow int

	// WarningConfidence and CriticalConfidence map the frame confidence
	// score onto alert levels.
	WarningConfidence  float64
	CriticalConfidence float64
}

// DefaultConfig returns the standard tuning: broad red-orange bands, a single
// muted-red exclusion band, and a three-frame consensus window. Suitable for
// candles, matches and burning paper at webcam distance.
func DefaultConfig() Config {
	return Config{
		Mode: ModeColorShapeMotion,
		FireBands: []Band{
			{HueLo: 0, HueHi: 25, SatLo: 100, SatHi: 255, ValLo: 100, ValHi: 255},
			{HueLo: 170, HueHi: 180, SatLo: 100, SatHi: 255, ValLo: 100, ValHi: 255},
		},
		ExcludeBands: []Band{
			{HueLo: 0, HueHi: 25, SatLo: 50, SatHi: 100, ValLo: 50, ValHi: 150},
			{HueLo: 170, HueHi: 180, SatLo: 50, SatHi: 100, ValLo: 50, ValHi: 150},
		},
		MorphKernelSize:    5,
		MorphIterations:    2,
		MinFireArea:        500,
		MaxFireArea:        100000,
		CircularityLow:     0.05,
		CircularityHigh:    0.85,
		OverlapIoU:         0.8,
		FlowNoiseFloor:     2.0,
		MinMotionRatio:     0.15,
		MinMeanSaturation:  100,
		MinMeanValue:       100,
		FlickerWindow:      10,
		MinFlickerVariance: 0.02,
		ConsensusWindow:    3,
		WarningConfidence:  0.7,
		CriticalConfidence: 0.9,
	}
}

// StrictConfig returns a low-false-positive tuning: only very bright, very
// saturated red-orange passes the color stage, skin and dull-red produce get
// their own exclusion bands, and the shape filter adds aspect-ratio and
// solidity checks. Confirmation needs five consecutive positive frames with
// nearly half the flame region in motion.
func StrictConfig() Config {
	cfg := DefaultConfig()
	cfg.Mode = ModeFull
	cfg.FireBands = []Band{
		{HueLo: 0, HueHi: 15, SatLo: 140, SatHi: 255, ValLo: 150, ValHi: 255},
		{HueLo: 175, HueHi: 180, SatLo: 140, SatHi: 255, ValLo: 150, ValHi: 255},
	}
	cfg.ExcludeBands = []Band{
		// Skin tones.
		{HueLo: 0, HueHi: 25, SatLo: 10, SatHi: 110, ValLo: 60, ValHi: 200},
		// Dull dark reds: tomatoes, fruit.
		{HueLo: 0, HueHi: 25, SatLo: 60, SatHi: 140, ValLo: 80, ValHi: 150},
		{HueLo: 170, HueHi: 180, SatLo: 60, SatHi: 140, ValLo: 80, ValHi: 150},
		// Red cloth.
		{HueLo: 0, HueHi: 25, SatLo: 50, SatHi: 110, ValLo: 50, ValHi: 180},
		{HueLo: 170, HueHi: 180, SatLo: 50, SatHi: 110, ValLo: 50, ValHi: 180},
	}
	cfg.MinFireArea = 800
	cfg.MaxFireArea = 80000
	cfg.CircularityLow = 0.25
	cfg.CircularityHigh = 0.7
	cfg.AspectRatioLow = 0.6
	cfg.AspectRatioHigh = 1.8
	cfg.SolidityLow = 0.4
	cfg.SolidityHigh = 0.85
	cfg.MinMotionRatio = 0.45
	cfg.MinFlickerVariance = 0.08
	cfg.ConsensusWindow = 5
	return cfg
}

// Validate checks the configuration for values the pipeline cannot run with.
// It is called once by New; per-frame code assumes a valid Config.
func (c Config) Validate() error {
	if c.Mode < ModeColorShape || c.Mode > ModeFull {
		return errors.Errorf("unknown mode %d", c.Mode)
	}
	if len(c.FireBands) == 0 {
		return errors.New("at least one fire band is required")
	}
	for i, b := range c.FireBands {
		if err := b.validate(); err != nil {
			return errors.Wrapf(err, "fire band %d", i)
		}
	}
	for i, b := range c.ExcludeBands {
		if err := b.validate(); err != nil {
			return errors.Wrapf(err, "exclusion band %d", i)
		}
	}
	if c.MorphKernelSize < 1 {
		return errors.Errorf("morph kernel size must be >= 1, got %d", c.MorphKernelSize)
	}
	if c.MorphIterations < 0 {
		return errors.Errorf("morph iterations must be >= 0, got %d", c.MorphIterations)
	}
	if c.MinFireArea < 0 {
		return errors.Errorf("min fire area must be >= 0, got %.0f", c.MinFireArea)
	}
	if c.MaxFireArea <= c.MinFireArea {
		return errors.Errorf("max fire area %.0f must exceed min fire area %.0f",
			c.MaxFireArea, c.MinFireArea)
	}
	if c.CircularityLow < 0 || c.CircularityHigh > 1 || c.CircularityLow >= c.CircularityHigh {
		return errors.Errorf("circularity bounds [%.2f,%.2f] must satisfy 0 <= low < high <= 1",
			c.CircularityLow, c.CircularityHigh)
	}
	if c.AspectRatioLow < 0 || (c.AspectRatioLow > 0 && c.AspectRatioHigh <= c.AspectRatioLow) {
		return errors.Errorf("aspect ratio bounds [%.2f,%.2f] must satisfy 0 <= low < high",
			c.AspectRatioLow, c.AspectRatioHigh)
	}
	if c.SolidityLow < 0 || (c.SolidityLow > 0 && (c.SolidityHigh <= c.SolidityLow || c.SolidityHigh > 1)) {
		return errors.Errorf("solidity bounds [%.2f,%.2f] must satisfy 0 <= low < high <= 1",
			c.SolidityLow, c.SolidityHigh)
	}
	if c.FlowNoiseFloor < 0 {
		return errors.Errorf("flow noise floor must be >= 0, got %.2f", c.FlowNoiseFloor)
	}
	if c.MinMotionRatio < 0 || c.MinMotionRatio > 1 {
		return errors.Errorf("min motion ratio %.2f outside [0,1]", c.MinMotionRatio)
	}
	if c.OverlapIoU < 0 || c.OverlapIoU > 1 {
		return errors.Errorf("overlap IoU %.2f outside [0,1]", c.OverlapIoU)
	}
	if c.MinMeanSaturation < 0 || c.MinMeanSaturation > 255 ||
		c.MinMeanValue < 0 || c.MinMeanValue > 255 {
		return errors.Errorf("mean S/V floors (%.0f,%.0f) outside [0,255]",
			c.MinMeanSaturation, c.MinMeanValue)
	}
	if c.FlickerWindow < 2 {
		return errors.Errorf("flicker window must be >= 2, got %d", c.FlickerWindow)
	}
	if c.ConsensusWindow < 1 {
		return errors.Errorf("consensus window must be >= 1, got %d", c.ConsensusWindow)
	}
	if c.WarningConfidence < 0 || c.WarningConfidence > 1 ||
		c.CriticalConfidence < 0 || c.CriticalConfidence > 1 ||
		c.WarningConfidence > c.CriticalConfidence {
		return errors.Errorf("alert thresholds warning=%.2f critical=%.2f must satisfy 0 <= warning <= critical <= 1",
			c.WarningConfidence, c.CriticalConfidence)
	}
	return nil
}

// kernelSize returns the morphology kernel dimensions as an image.Point.
func (c Config) kernelSize() image.Point {
	return image.Pt(c.MorphKernelSize, c.MorphKernelSize)
}

// areaInRange reports whether a contour area falls inside the accepted band.
// Both bounds are inclusive.
func (c Config) areaInRange(area float64) bool {
	return area >= c.MinFireArea && area <= c.MaxFireArea
}
