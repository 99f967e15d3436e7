// Package decode - Accelerated decode of multi-scale detection head outputs.
package decode

import "github.com/pkg/errors"

// Config represents the geometry and launch configuration of a decode engine.
type Config struct {
	// NetworkInputSize is the square input edge of the detector, in pixels.
	NetworkInputSize int `json:"network_input_size" yaml:"network_input_size"`

	// TargetWidth is the width of the output frame detections are mapped into.
	TargetWidth float64 `json:"target_width" yaml:"target_width"`

	// TargetHeight is the height of the output frame detections are mapped into.
	TargetHeight float64 `json:"target_height" yaml:"target_height"`

	// MaxGroupSize caps workers per launch group. Zero uses the device cap.
	MaxGroupSize int `json:"max_group_size" yaml:"max_group_size"`

	// Streams is the number of device queues levels are spread across. One processes
	// levels strictly one after another.
	Streams int `json:"streams" yaml:"streams"`
}

// DefaultConfig returns the configuration of the front camera pairing: a 640px detector
// mapped onto an 800x600 frame, processed serially.
//
// Returns:
//   - Config: The default configuration.
func DefaultConfig() Config {
	return Config{
		NetworkInputSize: 640,
		TargetWidth:      800,
		TargetHeight:     600,
		MaxGroupSize:     0,
		Streams:          1,
	}
}

// Validate checks the configuration.
//
// Returns:
//   - error: An error describing the first invalid field, or nil.
func (c Config) Validate() error {
	if c.NetworkInputSize < 1 {
		return errors.Errorf("network_input_size must be >= 1, got %d", c.NetworkInputSize)
	}
	if !(c.TargetWidth > 0) {
		return errors.Errorf("target_width must be > 0, got %v", c.TargetWidth)
	}
	if !(c.TargetHeight > 0) {
		return errors.Errorf("target_height must be > 0, got %v", c.TargetHeight)
	}
	if c.MaxGroupSize < 0 {
		return errors.Errorf("max_group_size must be >= 0, got %d", c.MaxGroupSize)
	}
	if c.Streams < 1 {
		return errors.Errorf("streams must be >= 1, got %d", c.Streams)
	}
	return nil
}

// RescaleFactor returns the coordinate correction for a detector whose input edge is
// modelSize when boxes are expressed against a referenceSize input.
//
// Arguments:
//   - referenceSize: The input edge the geometry formula is written against (e.g. 640).
//   - modelSize: The detector's actual input edge (e.g. 320).
//
// Returns:
//   - float64: referenceSize / modelSize.
//
// @example
// factor := RescaleFactor(640, 320) // 2.0
func RescaleFactor(referenceSize, modelSize int) float64 {
	return float64(referenceSize) / float64(modelSize)
}
