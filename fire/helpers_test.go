package fire

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

const (
	testFrameRows = 480
	testFrameCols = 640
)

// Flame-colored fills. Both land inside the default fire bands but differ in
// brightness, which gives the optical-flow stage texture to latch onto.
var (
	flameOrange = color.RGBA{R: 255, G: 128, B: 0, A: 255} // HSV ≈ (15, 255, 255)
	flameRed    = color.RGBA{R: 255, G: 60, B: 0, A: 255}  // HSV ≈ (7, 255, 255)
)

// newBGRFrame returns a zeroed (black) 3-channel test frame. Caller closes.
func newBGRFrame() gocv.Mat {
	return gocv.NewMatWithSize(testFrameRows, testFrameCols, gocv.MatTypeCV8UC3)
}

// newMask returns a zeroed single-channel mask. Caller closes.
func newMask() gocv.Mat {
	return gocv.NewMatWithSize(testFrameRows, testFrameCols, gocv.MatTypeCV8U)
}

var maskWhite = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func colorRGBA(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// drawFlameRegion paints a jagged, vertically striped flame-colored blob
// whose left edge sits at offsetX. The stripes alternate between two fire
// hues so the region has luminance texture; the teeth along the top break
// up the silhouette so it cannot be mistaken for a circle.
func drawFlameRegion(frame *gocv.Mat, offsetX int) {
	const top, bottom = 100, 180
	const width = 120

	// Striped body.
	for x := 0; x < width; x += 10 {
		c := flameOrange
		if (x/10)%2 == 1 {
			c = flameRed
		}
		gocv.Rectangle(frame, image.Rect(offsetX+x, top, offsetX+x+10, bottom), c, -1)
	}

	// Jagged teeth along the top edge.
	for k := 0; k < 6; k++ {
		x := offsetX + k*20
		y := top - 10 - (k*13)%25
		gocv.Rectangle(frame, image.Rect(x, y, x+10, top), flameOrange, -1)
	}
}

// processAll runs every frame through the classifier in order and returns
// the verdicts.
func processAll(c *Classifier, frames []gocv.Mat) []Verdict {
	verdicts := make([]Verdict, 0, len(frames))
	for _, f := range frames {
		verdicts = append(verdicts, c.Process(f))
	}
	return verdicts
}

func closeAll(frames []gocv.Mat) {
	for i := range frames {
		frames[i].Close()
	}
}
