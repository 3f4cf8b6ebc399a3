// Package logger provides the process-wide Logger, backed by log/slog with a
// console text handler or a rotated JSON file handler.
package logger
