package cvmat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

var twoRows = []float32{
	320, 320, 64, 32, 0.9, 0.1, 0.8,
	100, 200, 10, 20, 0.2, 0.7, 0.3,
}

func TestFromMat(t *testing.T) {
	m := gocv.NewMatWithSize(2, 7, gocv.MatTypeCV32F)
	defer m.Close()
	for i, v := range twoRows {
		m.SetFloatAt(i/7, i%7, v)
	}

	level, err := FromMat(m, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, level.Rows)
	assert.Equal(t, 7, level.Cols)
	assert.Equal(t, twoRows, level.Data)

	bytes := gocv.NewMatWithSize(2, 7, gocv.MatTypeCV8U)
	defer bytes.Close()
	_, err = FromMat(bytes, 2)
	assert.Error(t, err)

	empty := gocv.NewMat()
	defer empty.Close()
	_, err = FromMat(empty, 2)
	assert.Error(t, err)
}
