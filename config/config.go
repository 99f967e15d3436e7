// Package config - Loads the decode, device and logging configuration from YAML.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-decode/decode"
	"github.com/nvr-ai/go-decode/device"
	"github.com/nvr-ai/go-decode/logger"
	"github.com/nvr-ai/go-decode/postprocess"
)

// Config is the file-level configuration.
type Config struct {
	Decode decode.Config         `json:"decode" yaml:"decode"`
	Device device.Config         `json:"device" yaml:"device"`
	Log    logger.Config         `json:"log" yaml:"log"`
	NMS    postprocess.NMSConfig `json:"nms" yaml:"nms"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Decode: decode.DefaultConfig(),
		Device: device.DefaultConfig(),
		Log:    logger.DefaultConfig(),
		NMS:    postprocess.DefaultNMSConfig(),
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Decode.Validate(); err != nil {
		return errors.Wrap(err, "decode")
	}
	if err := c.Device.Validate(); err != nil {
		return errors.Wrap(err, "device")
	}
	if err := c.Log.Validate(); err != nil {
		return errors.Wrap(err, "log")
	}
	if c.NMS.IoUThreshold < 0 || c.NMS.IoUThreshold > 1 {
		return errors.Errorf("nms: iou_threshold %v outside [0, 1]", c.NMS.IoUThreshold)
	}
	return nil
}

// Parse decodes YAML over the defaults and validates the result. Keys that are absent
// keep their default values.
//
// Arguments:
//   - data: The YAML document.
//
// Returns:
//   - Config: The merged configuration.
//   - error: A parse or validation error.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// Load reads and parses the YAML file at path. An empty path returns Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	return Parse(data)
}
