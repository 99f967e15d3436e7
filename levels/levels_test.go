package levels

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
	"gorgonia.org/tensor"
)

// twoRows is a flat head output of two rows with two classes.
var twoRows = []float32{
	320, 320, 64, 32, 0.9, 0.1, 0.8,
	100, 200, 10, 20, 0.2, 0.7, 0.3,
}

func TestReshape(t *testing.T) {
	level, err := Reshape(twoRows, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, level.Rows)
	assert.Equal(t, 7, level.Cols)
	assert.Equal(t, 2, level.Classes())
	assert.NoError(t, level.Validate())
	assert.Equal(t, twoRows[7:], level.Row(1))

	_, err = Reshape(twoRows, 3)
	assert.True(t, errors.Is(err, ErrShape))

	_, err = Reshape(twoRows, 0)
	assert.Error(t, err)

	empty, err := Reshape(nil, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Rows)
	assert.Equal(t, 9, empty.Cols)
}

func TestReshapeAll(t *testing.T) {
	levels, err := ReshapeAll([][]float32{twoRows, twoRows[:7], nil}, 2)
	require.NoError(t, err)
	require.Len(t, levels, 3)
	assert.Equal(t, []int{2, 1, 0}, []int{levels[0].Rows, levels[1].Rows, levels[2].Rows})

	_, err = ReshapeAll([][]float32{twoRows, twoRows[:5]}, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output 1")
}

func TestFromDense(t *testing.T) {
	dense := tensor.New(tensor.WithShape(1, 2, 7), tensor.WithBacking(append([]float32(nil), twoRows...)))
	level, err := FromDense(dense, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, level.Rows)
	assert.Equal(t, twoRows, level.Data)

	wide := make([]float64, len(twoRows))
	for i, v := range twoRows {
		wide[i] = float64(v)
	}
	level, err = FromDense(tensor.New(tensor.WithShape(2, 7), tensor.WithBacking(wide)), 2)
	require.NoError(t, err)
	assert.Equal(t, twoRows, level.Data)

	ints := tensor.New(tensor.WithShape(2), tensor.WithBacking([]int{1, 2}))
	_, err = FromDense(ints, 2)
	assert.Error(t, err)

	_, err = FromDense(nil, 2)
	assert.Error(t, err)
}

func TestFromFloat16(t *testing.T) {
	bits := make([]uint16, len(twoRows))
	for i, v := range twoRows {
		bits[i] = float16.Fromfloat32(v).Bits()
	}

	level, err := FromFloat16(bits, 2)
	require.NoError(t, err)
	require.Equal(t, 2, level.Rows)
	for i, v := range twoRows {
		assert.Equal(t, float16.Fromfloat32(v).Float32(), level.Data[i], "value %d", i)
	}
	// Box fields and 0.5-steps are exact in half precision.
	assert.Equal(t, float32(320), level.Data[0])
	assert.Equal(t, float32(64), level.Data[2])

	_, err = FromFloat16(bits[:6], 2)
	assert.True(t, errors.Is(err, ErrShape))
}
