package device

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Device is a handle to one accelerator. It owns a private address space: host slices
// reach device memory only through explicit copies, and kernels only see device buffers.
//
// A Device is safe for concurrent use.
type Device struct {
	cfg     Config
	backend Backend
	logger  *zap.Logger

	mu       sync.Mutex
	inUse    int64
	peak     int64
	allocs   uint64
	frees    uint64
	launches uint64
	closed   bool
}

// Stats is a snapshot of device memory and launch counters.
type Stats struct {
	Backend     Backend `json:"backend"`
	BytesInUse  int64   `json:"bytes_in_use"`
	PeakBytes   int64   `json:"peak_bytes"`
	Allocations uint64  `json:"allocations"`
	Frees       uint64  `json:"frees"`
	Launches    uint64  `json:"launches"`
}

// New opens a device.
//
// Arguments:
//   - cfg: The device configuration.
//   - logger: Logger for device lifecycle events. Nil disables logging.
//
// Returns:
//   - *Device: The opened device.
//   - error: An error if the configuration is invalid or the backend is unavailable.
func New(cfg Config, logger *zap.Logger) (*Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid device config")
	}
	name, _ := Normalize(string(cfg.Backend))
	backend, err := resolve(name)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Device{
		cfg:     cfg,
		backend: backend,
		logger:  logger.With(zap.String("backend", string(backend))),
	}
	d.logger.Debug("device opened",
		zap.Int64("memory_limit", cfg.MemoryLimit),
		zap.Int("max_group_size", cfg.MaxGroupSize),
		zap.Int("workers", cfg.Workers),
	)
	return d, nil
}

// Name returns the resolved backend name.
func (d *Device) Name() string {
	return string(d.backend)
}

// MaxGroupSize returns the per-group worker cap.
func (d *Device) MaxGroupSize() int {
	return d.cfg.MaxGroupSize
}

// Stats returns a snapshot of the device counters.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Stats{
		Backend:     d.backend,
		BytesInUse:  d.inUse,
		PeakBytes:   d.peak,
		Allocations: d.allocs,
		Frees:       d.frees,
		Launches:    d.launches,
	}
}

// Close marks the device closed. Outstanding buffers may still be freed; every other
// operation fails with ErrClosed.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	if d.inUse > 0 {
		d.logger.Warn("device closed with live allocations", zap.Int64("bytes_in_use", d.inUse))
	}
	return nil
}

// check fails if the device is closed or the fault hook rejects op.
func (d *Device) check(op Op) error {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return errors.Wrapf(ErrClosed, "%s", op)
	}
	if d.cfg.Faults != nil {
		if err := d.cfg.Faults(op); err != nil {
			return err
		}
	}
	return nil
}

func (d *Device) reserve(bytes int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cfg.MemoryLimit > 0 && d.inUse+bytes > d.cfg.MemoryLimit {
		return errors.Wrapf(ErrOutOfMemory, "requested %d bytes with %d of %d in use",
			bytes, d.inUse, d.cfg.MemoryLimit)
	}
	d.inUse += bytes
	if d.inUse > d.peak {
		d.peak = d.inUse
	}
	d.allocs++
	return nil
}

func (d *Device) release(bytes int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inUse -= bytes
	d.frees++
}

func (d *Device) countLaunch() {
	d.mu.Lock()
	d.launches++
	d.mu.Unlock()
}
