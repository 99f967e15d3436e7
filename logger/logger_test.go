package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWithSyncersSplitsBySeverity(t *testing.T) {
	var out, errOut bytes.Buffer
	logger, err := NewWithSyncers(Config{Level: "debug"}, zapcore.AddSync(&out), zapcore.AddSync(&errOut))
	require.NoError(t, err)

	logger.Debug("decode started", zap.Int("rows", 8))
	logger.Warn("decode failed")
	require.NoError(t, logger.Sync())

	assert.Contains(t, out.String(), `"msg":"decode started"`)
	assert.Contains(t, out.String(), `"rows":8`)
	assert.NotContains(t, out.String(), "decode failed")
	assert.Contains(t, errOut.String(), `"msg":"decode failed"`)
}

func TestNewWithSyncersHonoursLevel(t *testing.T) {
	var out, errOut bytes.Buffer
	logger, err := NewWithSyncers(Config{Level: "warn"}, zapcore.AddSync(&out), zapcore.AddSync(&errOut))
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Error("shown")

	assert.Empty(t, out.String())
	assert.Equal(t, 1, strings.Count(errOut.String(), "\n"))
}

func TestInvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
	assert.Error(t, Config{Level: "loud"}.Validate())
	assert.NoError(t, DefaultConfig().Validate())
}
