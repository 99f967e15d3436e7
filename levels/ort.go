package levels

import (
	ort "github.com/yalue/onnxruntime_go"

	"github.com/nvr-ai/go-decode/decode"
)

// FromORT adapts an onnxruntime output tensor. The level shares the tensor's memory, so
// the tensor must outlive the decode call.
func FromORT(t *ort.Tensor[float32], numClasses int) (decode.TensorLevel, error) {
	return Reshape(t.GetData(), numClasses)
}

// FromORTOutputs adapts every output of a detector session, in output order.
func FromORTOutputs(outputs []*ort.Tensor[float32], numClasses int) ([]decode.TensorLevel, error) {
	flat := make([][]float32, len(outputs))
	for i, t := range outputs {
		flat[i] = t.GetData()
	}
	return ReshapeAll(flat, numClasses)
}
