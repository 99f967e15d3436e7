package decode

import "github.com/nvr-ai/go-decode/device"

// assembly owns the device-resident outputs of one call, sized to the whole batch.
type assembly struct {
	total      int
	validity   *device.Buffer[bool]
	detections *device.Buffer[Detection]
}

func allocateAssembly(dev *device.Device, total int) (*assembly, error) {
	validity, err := device.Alloc[bool](dev, total)
	if err != nil {
		return nil, err
	}
	detections, err := device.Alloc[Detection](dev, total)
	if err != nil {
		_ = validity.Free()
		return nil, err
	}
	return &assembly{total: total, validity: validity, detections: detections}, nil
}

// gather copies the finished outputs into a host Batch. Call only after every level's
// work has completed.
func (a *assembly) gather() (*Batch, error) {
	batch := &Batch{
		Detections: make([]Detection, a.total),
		Validity:   make([]bool, a.total),
	}
	if err := a.validity.CopyToHost(batch.Validity); err != nil {
		return nil, err
	}
	if err := a.detections.CopyToHost(batch.Detections); err != nil {
		return nil, err
	}
	return batch, nil
}

// Free releases both output buffers.
func (a *assembly) Free() error {
	_ = a.detections.Free()
	return a.validity.Free()
}
