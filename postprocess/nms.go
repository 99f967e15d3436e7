package postprocess

import "sync"

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	Greedy       bool    `json:"greedy" yaml:"greedy"`               // If true, use greedy NMS.
	IoUThreshold float64 `json:"iou_threshold" yaml:"iou_threshold"` // Overlap threshold for suppression.
	ClassAware   bool    `json:"class_aware" yaml:"class_aware"`     // If true, suppress only within same class.
	NumWorkers   int     `json:"num_workers" yaml:"num_workers"`     // Goroutines for parallel IoU computation.
}

// DefaultNMSConfig returns a class-aware greedy configuration.
func DefaultNMSConfig() NMSConfig {
	return NMSConfig{
		Greedy:       true,
		IoUThreshold: 0.45,
		ClassAware:   true,
		NumWorkers:   1,
	}
}

func (c *NMSConfig) suppresses(anchor, other Result) bool {
	if c.ClassAware && anchor.Class != other.Class {
		return false
	}
	return anchor.Box.IoU(other.Box) > c.IoUThreshold
}

// ApplyNMS filters overlapping detections using Non-Maximum Suppression.
//
// Arguments:
//   - detections: Sorted slice of detections (highest score first).
//   - config: NMS configuration. Greedy, or fewer than two workers, runs ApplyGreedyNMS.
//     Otherwise each anchor's IoU comparisons are split across NumWorkers goroutines.
//
// Returns:
//   - Filtered slice of detections. If no detections are provided, returns nil.
func ApplyNMS(detections []Result, config *NMSConfig) []Result {
	if config.Greedy || config.NumWorkers < 2 {
		return ApplyGreedyNMS(detections, config)
	}

	n := len(detections)
	if n == 0 {
		return nil
	}

	used := make([]bool, n)
	filtered := make([]Result, 0, n)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}
		anchor := detections[i]
		filtered = append(filtered, anchor)
		used[i] = true

		// Each worker owns a contiguous stripe of [i+1, n), so writes to used never overlap.
		rest := n - (i + 1)
		if rest == 0 {
			break
		}
		workers := min(config.NumWorkers, rest)
		stripe := (rest + workers - 1) / workers

		var wg sync.WaitGroup
		for start := i + 1; start < n; start += stripe {
			end := min(start+stripe, n)
			wg.Add(1)
			go func(start, end int) {
				defer wg.Done()
				for j := start; j < end; j++ {
					if !used[j] && config.suppresses(anchor, detections[j]) {
						used[j] = true
					}
				}
			}(start, end)
		}
		wg.Wait()
	}

	return filtered
}

// ApplyGreedyNMS performs standard greedy Non-Maximum Suppression.
//
// Arguments:
//   - detections: Slice of detections sorted by descending confidence.
//   - config: IoU threshold and class awareness.
//
// Returns:
//   - Filtered slice of detections.
func ApplyGreedyNMS(detections []Result, config *NMSConfig) []Result {
	n := len(detections)
	if n == 0 {
		return nil
	}

	filtered := make([]Result, 0, n)
	used := make([]bool, n)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}

		anchor := detections[i]
		filtered = append(filtered, anchor)
		used[i] = true

		for j := i + 1; j < n; j++ {
			if !used[j] && config.suppresses(anchor, detections[j]) {
				used[j] = true
			}
		}
	}

	return filtered
}
