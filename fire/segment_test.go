package fire

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"
)

// applyToBGR converts a BGR test frame to HSV and runs the segmenter on it.
// The returned count is the number of set mask pixels.
func applyToBGR(t *testing.T, cfg Config, frame gocv.Mat) int {
	t.Helper()
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(frame, &hsv, gocv.ColorBGRToHSV)

	s := newSegmenter(cfg)
	defer s.Close()
	return gocv.CountNonZero(s.Apply(hsv))
}

func TestSegmenterMatchesFlameColors(t *testing.T) {
	frame := newBGRFrame()
	defer frame.Close()
	gocv.Rectangle(&frame, image.Rect(100, 100, 200, 200), flameOrange, -1)

	count := applyToBGR(t, DefaultConfig(), frame)
	// Morphology may nibble the patch edges; the bulk must survive.
	assert.Greater(t, count, 9000)
}

func TestSegmenterUnionsWrappedRedBand(t *testing.T) {
	// Hue ≈ 178, reachable only through the second (wrapped) fire band.
	darkRed := color.RGBA{R: 255, G: 0, B: 17, A: 255}

	frame := newBGRFrame()
	defer frame.Close()
	gocv.Rectangle(&frame, image.Rect(100, 100, 200, 200), darkRed, -1)

	count := applyToBGR(t, DefaultConfig(), frame)
	assert.Greater(t, count, 9000)
}

func TestSegmenterIgnoresNonFlameColors(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
	}{
		{"green", color.RGBA{G: 200, A: 255}},
		{"blue", color.RGBA{B: 200, A: 255}},
		{"white", color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{"dull red", color.RGBA{R: 100, G: 71, B: 71, A: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := newBGRFrame()
			defer frame.Close()
			gocv.Rectangle(&frame, image.Rect(100, 100, 200, 200), tt.c, -1)

			assert.Zero(t, applyToBGR(t, DefaultConfig(), frame))
		})
	}
}

func TestSegmenterMorphologyDropsSpeckle(t *testing.T) {
	frame := newBGRFrame()
	defer frame.Close()
	// 3x3 flame-colored dots are smaller than the 5x5 opening kernel.
	for _, p := range []image.Point{{50, 50}, {300, 200}, {600, 400}} {
		gocv.Rectangle(&frame, image.Rect(p.X, p.Y, p.X+3, p.Y+3), flameOrange, -1)
	}

	assert.Zero(t, applyToBGR(t, DefaultConfig(), frame))
}
