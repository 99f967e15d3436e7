// Package postprocess - Turns decoded batches into ranked, de-duplicated results.
package postprocess

// Box is an axis-aligned rectangle in output-frame coordinates. X and Y are the top-left
// corner.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the box area, or 0 for degenerate boxes.
func (b Box) Area() float64 {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Width * b.Height
}

// IoU returns the intersection over union of two boxes.
//
// Arguments:
//   - o: The other box.
//
// Returns:
//   - float64: A value in [0, 1]. Disjoint or degenerate boxes give 0.
func (b Box) IoU(o Box) float64 {
	ix1 := max(b.X, o.X)
	iy1 := max(b.Y, o.Y)
	ix2 := min(b.X+b.Width, o.X+o.Width)
	iy2 := min(b.Y+b.Height, o.Y+o.Height)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0
	}
	inter := interW * interH

	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Normalize maps a box into frame-relative coordinates: the corner lands in [-1, 1]
// with the frame centre at 0, and the size becomes a fraction of the frame.
//
// Arguments:
//   - b: The box in pixels.
//   - width: The frame width in pixels.
//   - height: The frame height in pixels.
//
// Returns:
//   - Box: The normalised box.
func Normalize(b Box, width, height float64) Box {
	return Box{
		X:      (b.X/width - 0.5) * 2,
		Y:      (b.Y/height - 0.5) * 2,
		Width:  b.Width / width,
		Height: b.Height / height,
	}
}
