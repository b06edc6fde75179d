// Package logger wraps slog behind a process-wide instance so call sites
// stay terse. Production emits JSON lines for log shipping, everything else
// gets human-readable text.
package logger

import (
	"log/slog"
	"os"
)

// Log is the process-wide logger, set by Setup.
var Log *slog.Logger

// Setup builds the logger for the given environment and installs it as
// slog's default.
func Setup(env string) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	Log = slog.New(handler)
	slog.SetDefault(Log)
}

// Info logs at info level
func Info(msg string, args ...any) {
	Log.Info(msg, args...)
}

// Error logs at error level
func Error(msg string, args ...any) {
	Log.Error(msg, args...)
}

// Debug logs at debug level
func Debug(msg string, args ...any) {
	Log.Debug(msg, args...)
}

// Warn logs at warn level
func Warn(msg string, args ...any) {
	Log.Warn(msg, args...)
}
