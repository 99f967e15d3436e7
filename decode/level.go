package decode

import "github.com/pkg/errors"

// Column layout of a detection row.
const (
	ColCenterX = iota
	ColCenterY
	ColWidth
	ColHeight
	ColObjectness
	// ColFirstClass is the first per-class score column.
	ColFirstClass
)

// MinCols is the narrowest valid row: four box fields, objectness and one class score.
const MinCols = ColFirstClass + 1

// TensorLevel is one detection head's raw output: Rows candidate detections of Cols
// values each, stored row-major in Data.
//
// The engine borrows a TensorLevel for the duration of one Decode call and never
// modifies or retains it.
type TensorLevel struct {
	Rows int
	Cols int
	Data []float32
}

// Classes returns the number of class-score columns.
func (l TensorLevel) Classes() int {
	return l.Cols - ColFirstClass
}

// Row returns the i-th row.
func (l TensorLevel) Row(i int) []float32 {
	return l.Data[i*l.Cols : (i+1)*l.Cols]
}

// Validate checks the level's shape.
//
// Returns:
//   - error: A description of the violated precondition, or nil.
func (l TensorLevel) Validate() error {
	if l.Rows < 0 {
		return errors.Errorf("rows must be >= 0, got %d", l.Rows)
	}
	if l.Cols < MinCols {
		return errors.Errorf("cols must be >= %d, got %d", MinCols, l.Cols)
	}
	// Compare by division so a huge Rows cannot wrap the product.
	if l.Rows > len(l.Data)/l.Cols || len(l.Data) != l.Rows*l.Cols {
		return errors.Errorf("data has %d values, want rows*cols = %dx%d", len(l.Data), l.Rows, l.Cols)
	}
	return nil
}
