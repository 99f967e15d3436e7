package device

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Grid is the shape of a kernel launch: GroupCount groups of GroupSize workers.
type Grid struct {
	GroupSize  int `json:"group_size"`
	GroupCount int `json:"group_count"`
}

// Workers returns the total number of workers in the grid.
func (g Grid) Workers() int {
	return g.GroupSize * g.GroupCount
}

// Thread identifies one worker of a launch.
type Thread struct {
	Group     int
	Lane      int
	GroupSize int
}

// Global returns the worker's index across the whole grid.
func (t Thread) Global() int {
	return t.Group*t.GroupSize + t.Lane
}

// Kernel is executed once per worker of a launch. Kernels must bounds-check Global
// against their own problem size; the grid may contain more workers than work items.
type Kernel func(t Thread)

// Launch executes kernel over grid and waits for every worker to finish.
//
// Groups are distributed over the device's execution units; the order in which workers
// run is unspecified.
//
// Arguments:
//   - grid: The launch shape. GroupSize must not exceed MaxGroupSize.
//   - kernel: The per-worker function.
//
// Returns:
//   - error: ErrInvalidValue for a bad grid, ErrDeviceFault if a worker panicked.
func (d *Device) Launch(grid Grid, kernel Kernel) error {
	if grid.GroupSize < 0 || grid.GroupCount < 0 {
		return errors.Wrapf(ErrInvalidValue, "negative grid %dx%d", grid.GroupCount, grid.GroupSize)
	}
	if grid.GroupSize > d.cfg.MaxGroupSize {
		return errors.Wrapf(ErrInvalidValue, "group size %d exceeds device cap %d",
			grid.GroupSize, d.cfg.MaxGroupSize)
	}
	if err := d.check(OpLaunch); err != nil {
		return err
	}
	d.countLaunch()
	if grid.Workers() == 0 {
		return nil
	}

	units := d.cfg.Workers
	if units > grid.GroupCount {
		units = grid.GroupCount
	}

	var (
		next    atomic.Int64
		wg      sync.WaitGroup
		errOnce sync.Once
		execErr error
	)
	for u := 0; u < units; u++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					errOnce.Do(func() { execErr = kernelExecutionError(rec) })
				}
			}()
			for {
				group := int(next.Add(1) - 1)
				if group >= grid.GroupCount {
					return
				}
				for lane := 0; lane < grid.GroupSize; lane++ {
					kernel(Thread{Group: group, Lane: lane, GroupSize: grid.GroupSize})
				}
			}
		}()
	}
	wg.Wait()

	return execErr
}
