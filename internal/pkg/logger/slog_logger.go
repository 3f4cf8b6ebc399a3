package logger

import (
	"log/slog"
	"os"
)

// slogLogger adapts a slog.Logger to the Logger interface. Arguments are
// concatenated with fmt.Sprint into the record message.
type slogLogger struct {
	logger *slog.Logger
}

func newSlogLogger(handler slog.Handler) slogLogger {
	return slogLogger{logger: slog.New(handler)}
}

// Debug logs a debug message.
func (l slogLogger) Debug(args ...interface{}) {
	l.logger.Debug(formatArgs(args...))
}

// Info logs an informational message.
func (l slogLogger) Info(args ...interface{}) {
	l.logger.Info(formatArgs(args...))
}

// Warn logs a warning message.
func (l slogLogger) Warn(args ...interface{}) {
	l.logger.Warn(formatArgs(args...))
}

// Error logs an error message.
func (l slogLogger) Error(args ...interface{}) {
	l.logger.Error(formatArgs(args...))
}

// Fatal logs a fatal message and exits.
func (l slogLogger) Fatal(args ...interface{}) {
	l.logger.Error(formatArgs(args...))
	os.Exit(1)
}

// Panic logs a panic message and panics.
func (l slogLogger) Panic(args ...interface{}) {
	msg := formatArgs(args...)
	l.logger.Error(msg)
	panic(msg)
}
