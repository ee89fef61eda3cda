package internal

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	flags, out := log.Flags(), log.Writer()
	log.SetFlags(0)
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetFlags(flags)
		log.SetOutput(out)
	})
	return &buf
}

func TestParseLogLevel(t *testing.T) {
	l, err := ParseLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, LogLevelDebug, l)

	l, err = ParseLogLevel(" WARN ")
	require.NoError(t, err)
	assert.Equal(t, LogLevelWarn, l)

	l, err = ParseLogLevel("verbose")
	assert.Error(t, err)
	assert.Equal(t, LogLevelInfo, l)
}

func TestLoggerGatesByLevel(t *testing.T) {
	buf := captureLog(t)
	logger := NewLogger(LogLevelInfo).For("ClassifierManager")

	logger.Debug("hidden %d", 1)
	assert.Empty(t, buf.String())

	logger.Info("smithing ready")
	assert.Equal(t, "[ClassifierManager] smithing ready\n", buf.String())

	buf.Reset()
	logger.Warn("preload failed")
	assert.Equal(t, "[ClassifierManager] Warning: preload failed\n", buf.String())

	assert.False(t, logger.Enabled(LogLevelDebug))
	assert.True(t, NewLogger(LogLevelDebug).Enabled(LogLevelDebug))
}

func TestForKeepsLevel(t *testing.T) {
	base := NewLogger(LogLevelError)
	assert.Equal(t, LogLevelError, base.For("X").GetLevel())
}
