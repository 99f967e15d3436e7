package levels

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ort "github.com/yalue/onnxruntime_go"
)

func TestFromORT(t *testing.T) {
	libPath := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")
	if libPath == "" {
		t.Skip("ONNXRUNTIME_SHARED_LIBRARY_PATH not set")
	}
	ort.SetSharedLibraryPath(libPath)
	require.NoError(t, ort.InitializeEnvironment())
	defer ort.DestroyEnvironment()

	output, err := ort.NewTensor(ort.NewShape(1, 2, 7), append([]float32(nil), twoRows...))
	require.NoError(t, err)
	defer output.Destroy()

	level, err := FromORT(output, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, level.Rows)
	assert.Equal(t, twoRows, level.Data)

	levels, err := FromORTOutputs([]*ort.Tensor[float32]{output, output}, 2)
	require.NoError(t, err)
	assert.Len(t, levels, 2)
}
