// Package levels - Adapters from inference outputs to decode tensor levels.
package levels

import (
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-decode/decode"
)

// ErrShape is returned when a head output cannot be viewed as detection rows.
var ErrShape = errors.New("output does not divide into detection rows")

// Reshape views a flat head output as rows of 5 + numClasses values. The returned level
// shares data; it does not copy.
//
// Arguments:
//   - data: The head output, any leading dimensions flattened.
//   - numClasses: Number of class-score columns the detector emits.
//
// Returns:
//   - decode.TensorLevel: The level view.
//   - error: ErrShape if len(data) is not a multiple of the row width.
func Reshape(data []float32, numClasses int) (decode.TensorLevel, error) {
	if numClasses < 1 {
		return decode.TensorLevel{}, errors.Errorf("numClasses must be >= 1, got %d", numClasses)
	}
	cols := decode.ColFirstClass + numClasses
	if len(data)%cols != 0 {
		return decode.TensorLevel{}, errors.Wrapf(ErrShape, "%d values, row width %d", len(data), cols)
	}
	return decode.TensorLevel{
		Rows: len(data) / cols,
		Cols: cols,
		Data: data,
	}, nil
}

// ReshapeAll reshapes every head output with the same class count.
func ReshapeAll(outputs [][]float32, numClasses int) ([]decode.TensorLevel, error) {
	out := make([]decode.TensorLevel, 0, len(outputs))
	for i, data := range outputs {
		level, err := Reshape(data, numClasses)
		if err != nil {
			return nil, errors.Wrapf(err, "output %d", i)
		}
		out = append(out, level)
	}
	return out, nil
}
