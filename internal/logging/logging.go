// Package logging provides structured logging using Go's slog package,
// plus a small set of domain-event helpers (volume open/grow/error,
// registry events) so call sites log consistent fields instead of
// hand-rolled key/value pairs.
package logging

import (
	"log/slog"
	"os"
	"time"
)

var defaultLogger *slog.Logger

func init() {
	InitLogger(LevelInfo, FormatJSON)
}

// Level represents a log level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Format represents a log output format.
type Format int

const (
	// FormatJSON outputs logs in JSON format, for production/CI use.
	FormatJSON Format = iota
	// FormatText outputs logs in human-readable text format.
	FormatText
)

// InitLogger initializes the global logger with the specified level and
// format.
func InitLogger(level Level, format Format) {
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelInfo:
		slogLevel = slog.LevelInfo
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// GetLogger returns the global logger instance.
func GetLogger() *slog.Logger {
	return defaultLogger
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { defaultLogger.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { defaultLogger.Warn(msg, args...) }

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }

// VolumeOpened logs a physical or virtual volume open event.
func VolumeOpened(kind, path string, args ...any) {
	allArgs := []any{"kind", kind, "path", path}
	allArgs = append(allArgs, args...)
	defaultLogger.Info("volume_opened", allArgs...)
}

// VolumeGrown logs a storage file growth event.
func VolumeGrown(path string, newSize uint64, args ...any) {
	allArgs := []any{"path", path, "new_size", newSize}
	allArgs = append(allArgs, args...)
	defaultLogger.Info("volume_grown", allArgs...)
}

// VolumeError logs a volume operation error.
func VolumeError(path, operation string, err error, args ...any) {
	allArgs := []any{"path", path, "operation", operation, "error", err.Error()}
	allArgs = append(allArgs, args...)
	defaultLogger.Error("volume_error", allArgs...)
}

// RegistryEvent logs a registry handle lifecycle event (open/close/dedupe).
func RegistryEvent(event, handle string, args ...any) {
	allArgs := []any{"event", event, "handle", handle}
	allArgs = append(allArgs, args...)
	defaultLogger.Info("registry_event", allArgs...)
}
