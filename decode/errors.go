package decode

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-decode/device"
)

// Error kinds returned by Decode. Match them with errors.Is.
var (
	// ErrAllocation means a device or host buffer could not be allocated.
	ErrAllocation = errors.New("allocation failed")
	// ErrDevice means the accelerator failed a transfer or dispatch.
	ErrDevice = errors.New("device error")
	// ErrMalformedLevel means an input level violated its shape preconditions.
	ErrMalformedLevel = errors.New("malformed tensor level")
	// ErrAborted means the call's context ended before every level completed.
	ErrAborted = errors.New("decode aborted")
)

// Operation names reported in Error.Op.
const (
	opValidate = "validate"
	opAllocate = "allocate"
	opUpload   = "upload"
	opDispatch = "dispatch"
	opSync     = "synchronize"
	opGather   = "gather"
	opSchedule = "schedule"
)

// Error describes a failed Decode call. No partial batch accompanies it.
type Error struct {
	// Kind is one of ErrAllocation, ErrDevice, ErrMalformedLevel or ErrAborted.
	Kind error
	// Level is the input level being processed, or -1 when the failure is not tied to one.
	Level int
	// Op is the step that failed.
	Op string
	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	if e.Level >= 0 {
		return fmt.Sprintf("decode %s (level %d): %v: %v", e.Op, e.Level, e.Kind, e.Err)
	}
	return fmt.Sprintf("decode %s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// classify maps a device or context failure during op onto an error kind.
func classify(op string, level int, err error) *Error {
	kind := ErrDevice
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		kind = ErrAborted
	case errors.Is(err, device.ErrOutOfMemory):
		kind = ErrAllocation
	case op == opAllocate && !errors.Is(err, device.ErrClosed):
		kind = ErrAllocation
	}
	return &Error{Kind: kind, Level: level, Op: op, Err: err}
}
