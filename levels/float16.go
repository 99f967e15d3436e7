package levels

import (
	"github.com/pkg/errors"
	"github.com/x448/float16"

	"github.com/nvr-ai/go-decode/decode"
)

var f16LookupTable [65536]float32

func init() {
	// precompute float16 lookup table for faster conversion to float32
	for i := range f16LookupTable {
		f16LookupTable[i] = float16.Frombits(uint16(i)).Float32()
	}
}

// FromFloat16 widens a half-precision head output into a level. Every half value is
// exactly representable in float32, so decoding sees the network's values unchanged.
//
// Arguments:
//   - bits: IEEE 754 binary16 values, row-major.
//   - numClasses: Number of class-score columns.
//
// Returns:
//   - decode.TensorLevel: The level, backed by a new float32 slice.
//   - error: ErrShape if the output does not divide into rows.
func FromFloat16(bits []uint16, numClasses int) (decode.TensorLevel, error) {
	data := make([]float32, len(bits))
	for i, b := range bits {
		data[i] = f16LookupTable[b]
	}
	level, err := Reshape(data, numClasses)
	if err != nil {
		return decode.TensorLevel{}, errors.Wrap(err, "float16 output")
	}
	return level, nil
}
