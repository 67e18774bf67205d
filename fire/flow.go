package fire

import (
	"gocv.io/x/gocv"
)

// Farneback parameters. These match the upstream OpenCV defaults this family
// of detectors has always run with; they are not worth exposing as config.
const (
	flowPyrScale   = 0.5
	flowLevels     = 3
	flowWinSize    = 15
	flowIterations = 3
	flowPolyN      = 5
	flowPolySigma  = 1.2
)

// flowField estimates dense per-pixel displacement between the previous and
// current grayscale frames and answers motion-ratio queries for candidate
// regions. Matrices are reused across frames; Close releases them.
type flowField struct {
	flow       gocv.Mat
	magnitude  gocv.Mat
	angle      gocv.Mat
	motionMask gocv.Mat

	noiseFloor float32
	valid      bool
}

func newFlowField(cfg Config) *flowField {
	return &flowField{
		flow:       gocv.NewMat(),
		magnitude:  gocv.NewMat(),
		angle:      gocv.NewMat(),
		motionMask: gocv.NewMat(),
		noiseFloor: float32(cfg.FlowNoiseFloor),
	}
}

// Compute runs Farneback optical flow from prev to cur and thresholds the
// magnitude at the noise floor, leaving a binary moving-pixel mask for
// RegionMotionRatio queries. Both inputs must be single-channel grayscale of
// equal size.
func (f *flowField) Compute(prev, cur gocv.Mat) {
	gocv.CalcOpticalFlowFarneback(prev, cur, &f.flow,
		flowPyrScale, flowLevels, flowWinSize, flowIterations,
		flowPolyN, flowPolySigma, 0)

	channels := gocv.Split(f.flow)
	gocv.CartToPolar(channels[0], channels[1], &f.magnitude, &f.angle, false)
	for _, ch := range channels {
		ch.Close()
	}

	gocv.Threshold(f.magnitude, &f.motionMask, f.noiseFloor, 255, gocv.ThresholdBinary)
	f.valid = true
}

// Invalidate marks the field as holding no usable flow, e.g. before the
// first frame pair exists. Queries return 0 until the next Compute.
func (f *flowField) Invalidate() {
	f.valid = false
}

// RegionMotionRatio returns the fraction of pixels inside the candidate's
// bounding box whose displacement magnitude exceeds the noise floor. Without
// a valid flow field (first frame) it returns 0 so the system cannot
// false-positive before it has seen motion.
func (f *flowField) RegionMotionRatio(c *Candidate) float64 {
	if !f.valid {
		return 0
	}
	total := c.Box.Dx() * c.Box.Dy()
	if total == 0 {
		return 0
	}

	region := f.motionMask.Region(c.Box)
	defer region.Close()

	moving := gocv.CountNonZero(region)
	return float64(moving) / float64(total)
}

// Close releases the flow field's native matrices.
func (f *flowField) Close() {
	f.flow.Close()
	f.magnitude.Close()
	f.angle.Close()
	f.motionMask.Close()
}
