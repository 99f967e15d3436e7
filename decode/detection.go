package decode

// Detection is one decoded box in output-frame coordinates.
type Detection struct {
	// Confidence is the row's objectness score.
	Confidence float64 `json:"confidence"`
	// X is the left edge.
	X float64 `json:"x"`
	// Y is the top edge.
	Y float64 `json:"y"`
	// Width of the box.
	Width float64 `json:"width"`
	// Height of the box.
	Height float64 `json:"height"`
	// ClassID is the zero-based index of the highest scoring class column.
	ClassID int `json:"class_id"`
}

// Batch is the result of one Decode call. Detections and Validity are index-aligned and
// hold one entry per input row, levels concatenated in input order.
//
// Detections[i] carries meaning only when Validity[i] is true; use At or Valid rather
// than indexing Detections directly.
type Batch struct {
	Detections []Detection
	Validity   []bool
}

// Len returns the number of rows in the batch.
func (b *Batch) Len() int {
	return len(b.Validity)
}

// At returns the detection at batch index i and whether it is valid.
func (b *Batch) At(i int) (Detection, bool) {
	if !b.Validity[i] {
		return Detection{}, false
	}
	return b.Detections[i], true
}

// Count returns the number of valid rows.
func (b *Batch) Count() int {
	n := 0
	for _, ok := range b.Validity {
		if ok {
			n++
		}
	}
	return n
}

// Valid returns the valid detections in batch order.
func (b *Batch) Valid() []Detection {
	out := make([]Detection, 0, b.Count())
	for i, ok := range b.Validity {
		if ok {
			out = append(out, b.Detections[i])
		}
	}
	return out
}
