package log_test

import (
	"bytes"
	"testing"

	"github.com/on-the-ground/dispatch_ive_go/shared/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_ReadsLevelFromEnv(t *testing.T) {
	t.Setenv(log.EnvLogLevel, "debug")

	logger, err := log.New()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestNew_DefaultsToInfo(t *testing.T) {
	t.Setenv(log.EnvLogLevel, "")

	logger, err := log.New()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	t.Setenv(log.EnvLogLevel, "loud")

	_, err := log.New()
	assert.ErrorContains(t, err, "LOG_LEVEL")
}

func TestNewConsole_WritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewConsole(&buf)

	logger.Debug("rearranged", zap.Int("log_size", 4))
	require.NoError(t, logger.Sync())

	assert.Contains(t, buf.String(), "rearranged")
	assert.Contains(t, buf.String(), `"log_size": 4`)
}
