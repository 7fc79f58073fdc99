// Package log provides structured logging for gpudrv.
//
// Loggers are built once in main and handed to each component through
// its constructor. There is no process-wide default: a component given a
// nil Logger falls back to OrNoop.
//
// Output semantics:
//   - User output (stdout): menus, listings, command results
//   - Diagnostic logging (stderr): filtered by the verbosity flags
//   - Log file: every record at DEBUG and above, rotated by size
package log

import (
	"log/slog"
)

// Logger is the interface for structured logging.
// Methods match slog's signature for easy integration.
type Logger interface {
	// Debug logs at DEBUG level. Used for every command line before it runs.
	Debug(msg string, args ...any)

	// Info logs at INFO level. Used for detection results and operation outcomes.
	Info(msg string, args ...any)

	// Warn logs at WARN level. Used for recoverable command failures.
	Warn(msg string, args ...any)

	// Error logs at ERROR level. Used when a command exits nonzero or
	// writes to stderr, and for fatal startup conditions.
	Error(msg string, args ...any)

	// With returns a Logger that adds the given key-value pairs to
	// every subsequent record.
	With(args ...any) Logger
}

type slogLogger struct {
	l *slog.Logger
}

// New creates a Logger backed by slog with the given handler.
func New(h slog.Handler) Logger {
	return &slogLogger{l: slog.New(h)}
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...)}
}

type noopLogger struct{}

// NewNoop returns a logger that discards all output.
func NewNoop() Logger {
	return noopLogger{}
}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) With(...any) Logger   { return noopLogger{} }

// OrNoop returns l, or a noop logger when l is nil.
func OrNoop(l Logger) Logger {
	if l == nil {
		return noopLogger{}
	}
	return l
}
