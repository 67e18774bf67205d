package fire

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestCircularity(t *testing.T) {
	tests := []struct {
		name      string
		area      float64
		perimeter float64
		expected  float64
	}{
		{"perfect circle r=10", math.Pi * 100, 2 * math.Pi * 10, 1.0},
		{"square 10x10", 100, 40, math.Pi / 4},
		{"thin line 100x1", 100, 202, (4 * math.Pi * 100) / (202 * 202)},
		{"zero perimeter", 100, 0, 0},
		{"clamped above one", 1000, 10, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, circularity(tt.area, tt.perimeter), 1e-6)
		})
	}
}

func TestExtractCandidatesEmptyMask(t *testing.T) {
	mask := newMask()
	defer mask.Close()

	assert.Empty(t, extractCandidates(mask, DefaultConfig()))
}

func TestExtractCandidatesAcceptsJaggedRegion(t *testing.T) {
	mask := newMask()
	defer mask.Close()

	// Overlapping staircase of rectangles: flame-sized area, low
	// circularity.
	gocv.Rectangle(&mask, image.Rect(100, 100, 160, 140), maskWhite, -1)
	gocv.Rectangle(&mask, image.Rect(140, 130, 220, 170), maskWhite, -1)
	gocv.Rectangle(&mask, image.Rect(200, 160, 280, 200), maskWhite, -1)

	cands := extractCandidates(mask, DefaultConfig())
	require.Len(t, cands, 1)

	c := cands[0]
	assert.Greater(t, c.Area, 500.0)
	assert.Greater(t, c.Circularity, 0.05)
	assert.Less(t, c.Circularity, 0.85)
	assert.True(t, c.Box.Overlaps(image.Rect(100, 100, 280, 200)))
	assert.NotEmpty(t, c.Contour)
	assert.True(t, c.Centroid.In(c.Box))
}

func TestExtractCandidatesRejectsSpeckle(t *testing.T) {
	mask := newMask()
	defer mask.Close()

	// 10x10 blobs are far below the 500 px area floor.
	gocv.Rectangle(&mask, image.Rect(50, 50, 60, 60), maskWhite, -1)
	gocv.Rectangle(&mask, image.Rect(300, 300, 310, 310), maskWhite, -1)

	assert.Empty(t, extractCandidates(mask, DefaultConfig()))
}

func TestExtractCandidatesRejectsFrameFill(t *testing.T) {
	mask := newMask()
	defer mask.Close()

	// A frame-filling match (sunset, painted wall) exceeds the area cap.
	gocv.Rectangle(&mask, image.Rect(0, 0, testFrameCols, testFrameRows), maskWhite, -1)

	assert.Empty(t, extractCandidates(mask, DefaultConfig()))
}

func TestExtractCandidatesRejectsDisk(t *testing.T) {
	mask := newMask()
	defer mask.Close()

	// Near-perfect circles read as lens flare, not flame.
	gocv.Circle(&mask, image.Pt(320, 240), 60, maskWhite, -1)

	assert.Empty(t, extractCandidates(mask, DefaultConfig()))
}

func TestExtractCandidatesRejectsThinLine(t *testing.T) {
	mask := newMask()
	defer mask.Close()

	// 300x3: area passes the floor but circularity falls below the
	// thin-line cutoff.
	gocv.Rectangle(&mask, image.Rect(100, 240, 400, 243), maskWhite, -1)

	assert.Empty(t, extractCandidates(mask, DefaultConfig()))
}

func TestExtractCandidatesAspectRatioBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AspectRatioLow = 0.6
	cfg.AspectRatioHigh = 1.8

	mask := newMask()
	defer mask.Close()

	// A wide 200x40 bar: its min-area-rect aspect lands far outside
	// [0.6,1.8] whichever side OpenCV reports as width. The 100x100 square
	// sits at aspect 1 and passes.
	gocv.Rectangle(&mask, image.Rect(100, 100, 300, 140), maskWhite, -1)
	gocv.Rectangle(&mask, image.Rect(400, 300, 500, 400), maskWhite, -1)

	cands := extractCandidates(mask, cfg)
	require.Len(t, cands, 1)
	assert.True(t, cands[0].Box.Overlaps(image.Rect(400, 300, 500, 400)),
		"only the square-ish blob survives the aspect filter")
	assert.InDelta(t, 1.0, cands[0].AspectRatio, 0.1)
}

func TestExtractCandidatesSolidityBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SolidityLow = 0.4
	cfg.SolidityHigh = 0.85

	convex := newMask()
	defer convex.Close()
	// A solid square fills its own convex hull, so solidity ~1 exceeds the
	// ceiling. Real flames are concave.
	gocv.Rectangle(&convex, image.Rect(100, 100, 200, 200), maskWhite, -1)
	assert.Empty(t, extractCandidates(convex, cfg))

	jagged := newMask()
	defer jagged.Close()
	gocv.Rectangle(&jagged, image.Rect(100, 100, 160, 140), maskWhite, -1)
	gocv.Rectangle(&jagged, image.Rect(140, 130, 220, 170), maskWhite, -1)
	gocv.Rectangle(&jagged, image.Rect(200, 160, 280, 200), maskWhite, -1)

	cands := extractCandidates(jagged, cfg)
	require.Len(t, cands, 1)
	assert.Greater(t, cands[0].Solidity, 0.4)
	assert.Less(t, cands[0].Solidity, 0.85)
}

func TestExtractCandidatesOverlapDedupe(t *testing.T) {
	mask := newMask()
	defer mask.Close()

	// A U-shaped region with a separate blob nested in its concavity: two
	// external contours whose bounding boxes overlap (the blob's box lies
	// entirely inside the U's box, IoU ≈ 0.13).
	gocv.Rectangle(&mask, image.Rect(100, 100, 130, 200), maskWhite, -1)
	gocv.Rectangle(&mask, image.Rect(220, 100, 250, 200), maskWhite, -1)
	gocv.Rectangle(&mask, image.Rect(100, 170, 250, 200), maskWhite, -1)
	gocv.Rectangle(&mask, image.Rect(150, 120, 200, 160), maskWhite, -1)

	cfg := DefaultConfig()
	cands := extractCandidates(mask, cfg)
	assert.Len(t, cands, 2, "overlap below the default IoU cap keeps both")

	cfg.OverlapIoU = 0.1
	cands = extractCandidates(mask, cfg)
	assert.Len(t, cands, 1, "a tighter cap drops the nested duplicate")
}

func TestExtractCandidatesMultipleRegions(t *testing.T) {
	mask := newMask()
	defer mask.Close()

	gocv.Rectangle(&mask, image.Rect(50, 50, 150, 120), maskWhite, -1)
	gocv.Rectangle(&mask, image.Rect(400, 300, 500, 370), maskWhite, -1)

	cands := extractCandidates(mask, DefaultConfig())
	assert.Len(t, cands, 2)
}
