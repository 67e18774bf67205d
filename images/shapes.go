// Package images - Image processing utilities shared by the fire pipeline.
package images

// Rect is a lightweight bounding box.
type Rect struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1, Y1, X2, Y2 int
}

// CalculateIoU returns the Intersection over Union of two rectangles, a
// value in [0,1] measuring how much they overlap (1 = identical, 0 =
// disjoint). The fire pipeline uses it to drop candidate regions whose
// bounding boxes duplicate an already accepted flame fragment.
//
//	IoU = Area of Intersection / Area of Union
//
// The union is computed by inclusion-exclusion so the overlap is not counted
// twice: Union(A,B) = Area(A) + Area(B) - Intersection(A,B).
func CalculateIoU(r, o Rect) float32 {
	// The intersection's top-left is the max of the two top-lefts, its
	// bottom-right the min of the two bottom-rights.
	ix1 := max(r.X1, o.X1)
	iy1 := max(r.Y1, o.Y1)
	ix2 := min(r.X2, o.X2)
	iy2 := min(r.Y2, o.Y2)

	// Non-positive width or height means the rectangles do not overlap.
	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0.0
	}
	interArea := interW * interH

	areaR := (r.X2 - r.X1) * (r.Y2 - r.Y1)
	areaO := (o.X2 - o.X1) * (o.Y2 - o.Y1)
	union := areaR + areaO - interArea
	if union <= 0 {
		return 0.0
	}

	return float32(interArea) / float32(union)
}
