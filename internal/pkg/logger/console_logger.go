package logger

import (
	"io"
	"log/slog"
	"os"
)

// ConsoleLogger writes text records to standard output.
type ConsoleLogger struct {
	slogLogger
}

// NewConsoleLogger creates a new console logger with the specified log level.
func NewConsoleLogger(level string) Logger {
	return newConsoleLogger(os.Stdout, level)
}

func newConsoleLogger(w io.Writer, level string) *ConsoleLogger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return &ConsoleLogger{slogLogger: newSlogLogger(handler)}
}
