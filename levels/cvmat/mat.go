// Package cvmat - Adapts OpenCV DNN outputs to decode tensor levels. It is split from
// levels so only callers holding gocv Mats link against OpenCV.
package cvmat

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-decode/decode"
	"github.com/nvr-ai/go-decode/levels"
)

// FromMat adapts an OpenCV DNN forward output. The Mat must be CV_32F and continuous;
// the level shares its memory, so the Mat must not be closed before the decode call
// returns.
func FromMat(m gocv.Mat, numClasses int) (decode.TensorLevel, error) {
	if m.Empty() {
		return decode.TensorLevel{}, errors.New("mat is empty")
	}
	if m.Type() != gocv.MatTypeCV32F {
		return decode.TensorLevel{}, errors.Errorf("mat type %v, want CV_32F", m.Type())
	}
	data, err := m.DataPtrFloat32()
	if err != nil {
		return decode.TensorLevel{}, errors.Wrap(err, "mat data")
	}
	return levels.Reshape(data, numClasses)
}
