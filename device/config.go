// Package device - Accelerator runtime: device memory, in-order streams and grid launches.
package device

import (
	"runtime"

	"github.com/pkg/errors"
)

// Op identifies a device operation for fault hooks and error reporting.
type Op string

// Op constants are the operations a device performs on behalf of a caller.
const (
	OpAlloc        Op = "alloc"
	OpCopyToDevice Op = "copy_to_device"
	OpCopyToHost   Op = "copy_to_host"
	OpLaunch       Op = "launch"
)

// FaultHook is consulted before every device operation. A non-nil return aborts the
// operation with that error. Production configurations leave it nil.
type FaultHook func(op Op) error

// Config represents the configuration of an accelerator device.
type Config struct {
	// Backend selects the execution backend (auto, host or cuda).
	Backend Backend `json:"backend" yaml:"backend"`

	// MemoryLimit caps the bytes of device memory that may be allocated at once.
	// Zero means unlimited.
	MemoryLimit int64 `json:"memory_limit" yaml:"memory_limit"`

	// MaxGroupSize is the per-group worker cap for kernel launches.
	MaxGroupSize int `json:"max_group_size" yaml:"max_group_size"`

	// Workers is the number of execution units groups are spread across.
	Workers int `json:"workers" yaml:"workers"`

	// Faults is an optional hook used to simulate device failures.
	Faults FaultHook `json:"-" yaml:"-"`
}

// DefaultConfig returns a device configuration sized for a single embedded accelerator.
//
// Returns:
//   - Config: The default configuration.
func DefaultConfig() Config {
	return Config{
		Backend:      BackendAuto,
		MemoryLimit:  256 << 20,
		MaxGroupSize: 1024,
		Workers:      runtime.NumCPU(),
	}
}

// Validate checks the configuration for values the runtime cannot honour.
//
// Returns:
//   - error: An error describing the first invalid field, or nil.
func (c Config) Validate() error {
	if _, err := Normalize(string(c.Backend)); err != nil {
		return err
	}
	if c.MemoryLimit < 0 {
		return errors.Errorf("memory_limit must be >= 0, got %d", c.MemoryLimit)
	}
	if c.MaxGroupSize < 1 {
		return errors.Errorf("max_group_size must be >= 1, got %d", c.MaxGroupSize)
	}
	if c.Workers < 1 {
		return errors.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	return nil
}
