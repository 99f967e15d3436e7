package levels

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-decode/decode"
)

// FromDense adapts a gorgonia tensor holding a head output. float32 backings are shared;
// float64 backings are narrowed into a new slice. Views are materialized first.
//
// Arguments:
//   - t: The head output, e.g. shape (1, rows, 5+numClasses).
//   - numClasses: Number of class-score columns.
//
// Returns:
//   - decode.TensorLevel: The level.
//   - error: If the dtype is unsupported or the shape does not divide into rows.
func FromDense(t *tensor.Dense, numClasses int) (decode.TensorLevel, error) {
	if t == nil {
		return decode.TensorLevel{}, errors.New("tensor is nil")
	}
	if t.IsMaterializable() {
		materialized, ok := t.Materialize().(*tensor.Dense)
		if !ok {
			return decode.TensorLevel{}, errors.New("materialized tensor is not dense")
		}
		t = materialized
	}

	switch data := t.Data().(type) {
	case []float32:
		return Reshape(data, numClasses)
	case []float64:
		narrowed := make([]float32, len(data))
		for i, v := range data {
			narrowed[i] = float32(v)
		}
		return Reshape(narrowed, numClasses)
	default:
		return decode.TensorLevel{}, errors.Errorf("unsupported tensor dtype %v", t.Dtype())
	}
}
