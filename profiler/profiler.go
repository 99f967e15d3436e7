// Package profiler - Stage timing for real-time decode calls.
package profiler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DefaultMaxSamples is the per-stage sample window used when none is given.
const DefaultMaxSamples = 600

// TimeTracker tracks timing statistics for named stages.
//
// A nil *TimeTracker is valid and records nothing, so callers can thread an optional
// tracker without checks. TimeTracker is safe for concurrent use.
type TimeTracker struct {
	mu         sync.Mutex
	maxSamples int
	stages     map[string]*stageTimes
}

// stageTimes tracks one stage. Count, total, min and max cover every sample; durations
// keeps the most recent window for percentiles.
type stageTimes struct {
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// TimingStats summarizes one stage.
type TimingStats struct {
	Count int64         `json:"count"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Mean  time.Duration `json:"mean"`
	P50   time.Duration `json:"p50"`
	P95   time.Duration `json:"p95"`
	P99   time.Duration `json:"p99"`
}

// String formats the stats for display.
func (s TimingStats) String() string {
	return fmt.Sprintf("n=%d min=%v mean=%v p50=%v p95=%v p99=%v max=%v",
		s.Count, s.Min, s.Mean, s.P50, s.P95, s.P99, s.Max)
}

// NewTimeTracker creates a tracker.
//
// Arguments:
// - maxSamples: Per-stage window used for percentiles. Values < 1 use DefaultMaxSamples.
//
// Returns:
// - A ready TimeTracker
func NewTimeTracker(maxSamples int) *TimeTracker {
	if maxSamples < 1 {
		maxSamples = DefaultMaxSamples
	}
	return &TimeTracker{
		maxSamples: maxSamples,
		stages:     make(map[string]*stageTimes),
	}
}

// Start begins timing a stage.
//
// Arguments:
// - stage: The name of the stage to track
//
// Returns:
// - A function to call when the stage completes
func (t *TimeTracker) Start(stage string) func() {
	start := time.Now()
	return func() {
		t.Record(stage, time.Since(start))
	}
}

// Record adds one duration sample to a stage.
func (t *TimeTracker) Record(stage string, duration time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	tracker, exists := t.stages[stage]
	if !exists {
		tracker = &stageTimes{
			minTime: duration,
			maxTime: duration,
		}
		t.stages[stage] = tracker
	}

	tracker.durations = append(tracker.durations, duration)
	if len(tracker.durations) > t.maxSamples {
		// Remove oldest sample
		tracker.durations = tracker.durations[1:]
	}

	tracker.totalTime += duration
	tracker.count++

	if duration < tracker.minTime {
		tracker.minTime = duration
	}
	if duration > tracker.maxTime {
		tracker.maxTime = duration
	}
}

// Stages returns the recorded stage names in sorted order.
func (t *TimeTracker) Stages() []string {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	names := make([]string, 0, len(t.stages))
	for name := range t.stages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stats returns the summary of a stage and whether it has samples.
func (t *TimeTracker) Stats(stage string) (TimingStats, bool) {
	if t == nil {
		return TimingStats{}, false
	}
	t.mu.Lock()
	tracker, exists := t.stages[stage]
	if !exists {
		t.mu.Unlock()
		return TimingStats{}, false
	}
	window := make([]float64, len(tracker.durations))
	for i, d := range tracker.durations {
		window[i] = float64(d)
	}
	stats := TimingStats{
		Count: tracker.count,
		Min:   tracker.minTime,
		Max:   tracker.maxTime,
		Mean:  tracker.totalTime / time.Duration(tracker.count),
	}
	t.mu.Unlock()

	sort.Float64s(window)
	stats.P50 = time.Duration(stat.Quantile(0.50, stat.Empirical, window, nil))
	stats.P95 = time.Duration(stat.Quantile(0.95, stat.Empirical, window, nil))
	stats.P99 = time.Duration(stat.Quantile(0.99, stat.Empirical, window, nil))
	return stats, true
}

// Snapshot returns the stats of every stage keyed by name.
func (t *TimeTracker) Snapshot() map[string]TimingStats {
	out := make(map[string]TimingStats)
	for _, name := range t.Stages() {
		if s, ok := t.Stats(name); ok {
			out[name] = s
		}
	}
	return out
}

// FormatBytes formats byte counts in human-readable format.
func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
