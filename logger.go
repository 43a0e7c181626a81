package chatclient

import "log/slog"

// Logger is the interface for structured diagnostic logging.
// It is designed to be compatible with *slog.Logger from the standard library.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, args ...any)
	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, args ...any)
	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, args ...any)
	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, args ...any)
}

// defaultLogger returns the default slog logger from the standard library.
func defaultLogger() Logger {
	return slog.Default()
}

// Sink receives the chat transcript: connect and disconnect lines and every
// message sent or received. Implementations must not block for long and
// should handle their own failures.
type Sink interface {
	Log(line string)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(line string)

// Log calls f(line).
func (f SinkFunc) Log(line string) {
	f(line)
}

type nopSink struct{}

func (nopSink) Log(string) {}
