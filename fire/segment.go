package fire

import (
	"gocv.io/x/gocv"
)

// segmenter turns an HSV frame into a binary fire-color mask.
//
// It is stateful only in the sense that it reuses OpenCV matrices across
// frames to avoid per-frame allocation; the mask itself is a pure function
// of the input frame and the configured bands. Always call Close when done
// to release native resources.
type segmenter struct {
	bands   []Band
	exclude []Band

	// Reused scratch matrices.
	mask    gocv.Mat // running fire mask
	bandHit gocv.Mat // per-band in-range result
	exclHit gocv.Mat // accumulated exclusion mask
	inverse gocv.Mat // bitwise-not scratch
	kernel  gocv.Mat // elliptical structuring element

	iterations int
}

// newSegmenter builds a segmenter from a validated Config.
func newSegmenter(cfg Config) *segmenter {
	return &segmenter{
		bands:      cfg.FireBands,
		exclude:    cfg.ExcludeBands,
		mask:       gocv.NewMat(),
		bandHit:    gocv.NewMat(),
		exclHit:    gocv.NewMat(),
		inverse:    gocv.NewMat(),
		kernel:     gocv.GetStructuringElement(gocv.MorphEllipse, cfg.kernelSize()),
		iterations: cfg.MorphIterations,
	}
}

// Apply computes the fire-color mask for an HSV frame.
//
// A pixel is set when it falls inside any fire band and outside every
// exclusion band. The mask is then opened and closed with an elliptical
// kernel to drop speckle noise and bridge small gaps, matching what the
// contour stage expects.
//
// The returned Mat is owned by the segmenter and is only valid until the
// next Apply or Close call.
func (s *segmenter) Apply(hsv gocv.Mat) gocv.Mat {
	// Union of the fire bands. Red wraps around the hue circle, so there
	// are normally two.
	gocv.InRangeWithScalar(hsv, s.bands[0].Lower(), s.bands[0].Upper(), &s.mask)
	for _, b := range s.bands[1:] {
		gocv.InRangeWithScalar(hsv, b.Lower(), b.Upper(), &s.bandHit)
		gocv.BitwiseOr(s.mask, s.bandHit, &s.mask)
	}

	// Exclusion bands win over fire bands: a pixel matching both is unset.
	if len(s.exclude) > 0 {
		gocv.InRangeWithScalar(hsv, s.exclude[0].Lower(), s.exclude[0].Upper(), &s.exclHit)
		for _, b := range s.exclude[1:] {
			gocv.InRangeWithScalar(hsv, b.Lower(), b.Upper(), &s.bandHit)
			gocv.BitwiseOr(s.exclHit, s.bandHit, &s.exclHit)
		}
		gocv.BitwiseNot(s.exclHit, &s.inverse)
		gocv.BitwiseAnd(s.mask, s.inverse, &s.mask)
	}

	for i := 0; i < s.iterations; i++ {
		gocv.MorphologyEx(s.mask, &s.mask, gocv.MorphOpen, s.kernel)
	}
	for i := 0; i < s.iterations; i++ {
		gocv.MorphologyEx(s.mask, &s.mask, gocv.MorphClose, s.kernel)
	}

	return s.mask
}

// Close releases the segmenter's native matrices.
func (s *segmenter) Close() {
	s.mask.Close()
	s.bandHit.Close()
	s.exclHit.Close()
	s.inverse.Close()
	s.kernel.Close()
}
