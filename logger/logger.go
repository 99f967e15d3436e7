// Package logger - Builds the structured loggers used across the module.
package logger

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls logger construction.
type Config struct {
	// Level is the minimum enabled level: debug, info, warn or error.
	Level string `json:"level" yaml:"level"`
	// Development switches to the development encoder with caller information.
	Development bool `json:"development" yaml:"development"`
}

// DefaultConfig returns an info-level production logger configuration.
func DefaultConfig() Config {
	return Config{Level: "info"}
}

// Validate checks that the level parses.
func (c Config) Validate() error {
	_, err := zapcore.ParseLevel(c.Level)
	return errors.Wrapf(err, "invalid log level %q", c.Level)
}

// New builds a logger writing debug and info to stdout and warn and above to stderr.
//
// Arguments:
//   - cfg: The logger configuration.
//
// Returns:
//   - *zap.Logger: The logger.
//   - error: An error if the level is invalid.
func New(cfg Config) (*zap.Logger, error) {
	return NewWithSyncers(cfg, zapcore.Lock(os.Stdout), zapcore.Lock(os.Stderr))
}

// NewWithSyncers is New with explicit destinations for low and high severity entries.
func NewWithSyncers(cfg Config, out, errOut zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", cfg.Level)
	}

	// low and high severity enablers, both gated on the configured level
	lowLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= level && l < zapcore.WarnLevel
	})
	highLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= level && l >= zapcore.WarnLevel
	})

	encoderConfig := zap.NewProductionEncoderConfig()
	if cfg.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, out, lowLevel),
		zapcore.NewCore(encoder.Clone(), errOut, highLevel),
	)

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Development {
		opts = append(opts, zap.AddCaller(), zap.Development())
	}
	return zap.New(core, opts...), nil
}
