package log

import (
	"github.com/kataras/golog"
)

// GologLogger implements Logger using kataras/golog.
type GologLogger struct {
	logger *golog.Logger
}

var _ Logger = (*GologLogger)(nil)

// NewGologLogger creates a golog-backed logger at the given level.
func NewGologLogger(level Level) *GologLogger {
	logger := golog.New()
	logger.SetPrefix("[memorygo] ")
	logger.SetLevel(level.String())
	return &GologLogger{logger: logger}
}

// WrapGolog wraps an existing golog.Logger so applications that already use
// golog can share their instance with the memory subsystem.
func WrapGolog(logger *golog.Logger) *GologLogger {
	return &GologLogger{logger: logger}
}

// SetLevel changes the log level.
func (l *GologLogger) SetLevel(level Level) {
	l.logger.SetLevel(level.String())
}

// Debug logs debug messages.
func (l *GologLogger) Debug(format string, v ...any) {
	l.logger.Debugf(format, v...)
}

// Info logs informational messages.
func (l *GologLogger) Info(format string, v ...any) {
	l.logger.Infof(format, v...)
}

// Warn logs warning messages.
func (l *GologLogger) Warn(format string, v ...any) {
	l.logger.Warnf(format, v...)
}

// Error logs error messages.
func (l *GologLogger) Error(format string, v ...any) {
	l.logger.Errorf(format, v...)
}
