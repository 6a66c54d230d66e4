// Package log provides structured logging for the tabfit training pipeline.
//
// It defines a minimal, slog-compatible Logger interface so that pipeline
// code never depends on a concrete logging backend, plus a zerolog-backed
// provider as the default implementation and an in-memory implementation
// for tests. Standard attribute keys for pipeline stages live in
// attributes.go.
package log

import (
	"context"
)

// Logger is a structured logging interface compatible with Go's log/slog
// key-value convention. Fields are alternating key/value pairs.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// If a field value is an error carrying a stack trace, the trace is
	// attached under the stacktrace attribute.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, value-compatible with slog.Level.
type Level int

// Standard logging levels.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates and configures loggers. It exists for dependency
// injection: the pipeline takes a provider, components take loggers.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger tagged with a component name.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum level for loggers from this provider.
	SetLevel(level Level)
}

// ToLogLevel converts a level name to a Level. Unknown names map to info.
func ToLogLevel(level string) Level {
	switch level {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}
