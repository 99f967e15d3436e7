package decode

import "github.com/nvr-ai/go-decode/device"

// kernelParams are the scalar launch arguments shared by every worker of a call.
// Threshold and rescale travel in single precision, like the rows they are applied to.
type kernelParams struct {
	threshold    float32
	rescale      float32
	inputSize    float64
	targetWidth  float64
	targetHeight float64
}

func (p kernelParams) adjust(v float32, target float64) float64 {
	return float64(v) * float64(p.rescale) / p.inputSize * target
}

// decodeRow decides one row. It writes out only when the row is valid and reports
// whether it did.
//
// The threshold test and class scan stay in float32; values are promoted to float64
// only while assembling the Detection.
func decodeRow(row []float32, p kernelParams, out *Detection) bool {
	objectness := row[ColObjectness]
	if !(objectness > p.threshold) {
		return false
	}

	// First maximum wins: the running best only moves on a strictly greater score.
	best := ColFirstClass
	for c := ColFirstClass + 1; c < len(row); c++ {
		if row[best] < row[c] {
			best = c
		}
	}

	width := p.adjust(row[ColWidth], p.targetWidth)
	height := p.adjust(row[ColHeight], p.targetHeight)
	*out = Detection{
		Confidence: float64(objectness),
		X:          p.adjust(row[ColCenterX], p.targetWidth) - width/2,
		Y:          p.adjust(row[ColCenterY], p.targetHeight) - height/2,
		Width:      width,
		Height:     height,
		ClassID:    best - ColFirstClass,
	}
	return true
}

// decodeKernel binds one level's device rows to the batch outputs. Worker g handles
// row g and writes batch slot offset+g; workers past rows do nothing.
func decodeKernel(
	rows []float32,
	cols, n, offset int,
	p kernelParams,
	detections []Detection,
	validity []bool,
) device.Kernel {
	return func(t device.Thread) {
		i := t.Global()
		if i >= n {
			return
		}
		row := rows[i*cols : (i+1)*cols : (i+1)*cols]
		validity[offset+i] = decodeRow(row, p, &detections[offset+i])
	}
}
