package device

import "github.com/pkg/errors"

var (
	// ErrOutOfMemory is returned when an allocation would exceed the device memory limit.
	ErrOutOfMemory = errors.New("device out of memory")
	// ErrDeviceFault is returned when a transfer or launch fails on the device.
	ErrDeviceFault = errors.New("device fault")
	// ErrInvalidValue is returned for malformed arguments (sizes, grids, freed buffers).
	ErrInvalidValue = errors.New("invalid device argument")
	// ErrClosed is returned for operations on a closed device or stream.
	ErrClosed = errors.New("device closed")
	// ErrBackendUnavailable is returned when the requested backend is not compiled in.
	ErrBackendUnavailable = errors.New("backend not available in this build")
)

func kernelExecutionError(rec any) error {
	if recErr, ok := rec.(error); ok {
		return errors.Wrapf(ErrDeviceFault, "kernel execution failed: %v", recErr)
	}
	return errors.Wrapf(ErrDeviceFault, "kernel execution failed: %v", rec)
}
