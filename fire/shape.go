package fire

import (
	"image"
	"math"

	"github.com/firewatch-ai/go-fire/images"
	"gocv.io/x/gocv"
)

// Candidate is one connected component of the color mask that survived the
// shape filter. Candidates live for a single classification call.
type Candidate struct {
	// Area is the contour area in pixels.
	Area float64
	// Contour is the bounding contour in discovery order.
	Contour []image.Point
	// Centroid is the mean of the contour points.
	Centroid image.Point
	// Box is the axis-aligned bounding rectangle.
	Box image.Rectangle
	// Circularity is 4πA/P² clamped to [0,1]; 1 is a perfect circle.
	Circularity float64
	// AspectRatio is height over width of the minimum-area rectangle.
	AspectRatio float64
	// Solidity is contour area over convex hull area.
	Solidity float64

	// MotionRatio is filled by the motion stage: the fraction of pixels in
	// Box with flow magnitude above the noise floor.
	MotionRatio float64
	// MeanSaturation and MeanValue are the mean S and V inside the mask
	// within Box, filled at aggregation.
	MeanSaturation float64
	MeanValue      float64
}

// circularity computes 4πA/P², clamped to [0,1]. Rasterized contours can
// nudge slightly above 1 for tiny blobs; the clamp keeps the score honest.
func circularity(area, perimeter float64) float64 {
	if perimeter <= 0 {
		return 0
	}
	c := (4 * math.Pi * area) / (perimeter * perimeter)
	if c > 1 {
		return 1
	}
	return c
}

// extractCandidates walks the external contours of the fire-color mask and
// keeps those whose geometry is plausible for a flame.
//
// Rejections, in order:
//   - area below MinFireArea (exclusive) or above MaxFireArea: speckle noise
//     and frame-filling false matches;
//   - circularity above CircularityHigh: near-circular blobs such as lens
//     flare or uniform disks — real flames are jagged;
//   - circularity below CircularityLow: thin line artifacts;
//   - aspect ratio or solidity outside the configured bounds, when enabled;
//   - bounding box overlapping an already accepted candidate beyond
//     OverlapIoU: duplicate fragments of one flame.
//
// Pure function of the mask and config; discovery order is preserved but has
// no meaning.
func extractCandidates(mask gocv.Mat, cfg Config) []Candidate {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var out []Candidate
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)

		area := gocv.ContourArea(contour)
		if !cfg.areaInRange(area) {
			continue
		}

		perimeter := gocv.ArcLength(contour, true)
		circ := circularity(area, perimeter)
		if circ < cfg.CircularityLow || circ > cfg.CircularityHigh {
			continue
		}

		aspect := aspectRatio(contour)
		if cfg.AspectRatioLow > 0 && (aspect < cfg.AspectRatioLow || aspect > cfg.AspectRatioHigh) {
			continue
		}

		var sol float64
		if cfg.SolidityLow > 0 {
			sol = solidity(contour, area)
			if sol < cfg.SolidityLow || sol > cfg.SolidityHigh {
				continue
			}
		}

		out = appendCandidate(out, contour, area, circ, aspect, sol, cfg.OverlapIoU)
	}
	return out
}

// appendCandidate materializes a Candidate unless its box duplicates an
// already accepted one.
func appendCandidate(
	out []Candidate,
	contour gocv.PointVector,
	area, circ, aspect, sol, overlapIoU float64,
) []Candidate {
	box := gocv.BoundingRect(contour)
	for _, prev := range out {
		if float64(images.CalculateIoU(toRect(prev.Box), toRect(box))) > overlapIoU {
			return out
		}
	}

	pts := contour.ToPoints()
	return append(out, Candidate{
		Area:        area,
		Contour:     pts,
		Centroid:    centroid(pts),
		Box:         box,
		Circularity: circ,
		AspectRatio: aspect,
		Solidity:    sol,
	})
}

// aspectRatio returns height/width of the contour's minimum-area rectangle,
// or 0 when the rectangle is degenerate.
func aspectRatio(contour gocv.PointVector) float64 {
	rect := gocv.MinAreaRect(contour)
	if rect.Width == 0 {
		return 0
	}
	return float64(rect.Height) / float64(rect.Width)
}

// solidity returns contour area over convex hull area, or 0 when the hull is
// degenerate.
func solidity(contour gocv.PointVector, area float64) float64 {
	hull := gocv.NewMat()
	defer hull.Close()
	gocv.ConvexHull(contour, &hull, true, true)

	hullPoints := gocv.NewPointVectorFromMat(hull)
	defer hullPoints.Close()

	hullArea := gocv.ContourArea(hullPoints)
	if hullArea == 0 {
		return 0
	}
	return area / hullArea
}

func centroid(pts []image.Point) image.Point {
	if len(pts) == 0 {
		return image.Point{}
	}
	var sx, sy int
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	return image.Pt(sx/len(pts), sy/len(pts))
}

func toRect(r image.Rectangle) images.Rect {
	return images.Rect{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}
