package log

// Level represents logging severity.
type Level int

const (
	// LevelDebug for detailed debugging information
	LevelDebug Level = iota
	// LevelInfo for general informational messages
	LevelInfo
	// LevelWarn for warning messages
	LevelWarn
	// LevelError for error messages
	LevelError
	// LevelNone disables all logging
	LevelNone
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelNone:
		return "disable"
	default:
		return "info"
	}
}

// Logger is the logging contract used across the subsystem.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

// NoOpLogger discards everything.
type NoOpLogger struct{}

// NewNoOpLogger creates a logger that discards all output.
func NewNoOpLogger() *NoOpLogger { return &NoOpLogger{} }

// Debug does nothing.
func (l *NoOpLogger) Debug(format string, v ...any) {}

// Info does nothing.
func (l *NoOpLogger) Info(format string, v ...any) {}

// Warn does nothing.
func (l *NoOpLogger) Warn(format string, v ...any) {}

// Error does nothing.
func (l *NoOpLogger) Error(format string, v ...any) {}

// Package-level logger, defaults to a golog-backed logger at info level.
var defaultLogger Logger = NewGologLogger(LevelInfo)

// SetDefault installs the package-level logger.
// This lets users redirect or silence subsystem logging globally without
// passing logger objects around.
func SetDefault(logger Logger) {
	defaultLogger = logger
}

// Default returns the current package-level logger.
func Default() Logger {
	return defaultLogger
}

// Debug logs a debug message using the package-level logger.
func Debug(format string, v ...any) {
	defaultLogger.Debug(format, v...)
}

// Info logs an informational message using the package-level logger.
func Info(format string, v ...any) {
	defaultLogger.Info(format, v...)
}

// Warn logs a warning message using the package-level logger.
func Warn(format string, v ...any) {
	defaultLogger.Warn(format, v...)
}

// Error logs an error message using the package-level logger.
func Error(format string, v ...any) {
	defaultLogger.Error(format, v...)
}
