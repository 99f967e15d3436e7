package decode

import "github.com/nvr-ai/go-decode/device"

// PlanLaunch sizes a launch covering n rows with at most maxGroupSize workers per group.
//
// Arguments:
//   - n: Number of rows.
//   - maxGroupSize: Per-group worker cap. Values below 1 are treated as 1.
//
// Returns:
//   - device.Grid: One group of n workers when n < maxGroupSize, otherwise groups of
//     maxGroupSize with ceil(n / maxGroupSize) groups. Surplus workers in the last group
//     must be bounds-guarded by the kernel.
func PlanLaunch(n, maxGroupSize int) device.Grid {
	if maxGroupSize < 1 {
		maxGroupSize = 1
	}
	if n < maxGroupSize {
		return device.Grid{GroupSize: n, GroupCount: 1}
	}
	return device.Grid{
		GroupSize:  maxGroupSize,
		GroupCount: (n + maxGroupSize - 1) / maxGroupSize,
	}
}
