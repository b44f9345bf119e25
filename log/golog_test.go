package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelString(t *testing.T) {
	assert.Equal(t, "debug", LevelDebug.String())
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "warn", LevelWarn.String())
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "disable", LevelNone.String())
}

func TestSetDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	noop := NewNoOpLogger()
	SetDefault(noop)
	assert.Equal(t, noop, Default())

	// Must not panic
	Debug("debug %d", 1)
	Info("info %d", 2)
	Warn("warn %d", 3)
	Error("error %d", 4)
}

func TestGologLogger(t *testing.T) {
	logger := NewGologLogger(LevelError)
	// Below-level calls must be no-ops and must not panic
	logger.Debug("hidden %s", "msg")
	logger.Info("hidden %s", "msg")
	logger.SetLevel(LevelDebug)
	logger.Debug("visible %s", "msg")
}
