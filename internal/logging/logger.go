// Package logging configures slog: JSON to stdout, optionally fanned out to
// a store-backed handler that keeps ERROR records in system_logs.
package logging

import (
	"log/slog"
	"os"
)

// Setup initializes the global slog logger with JSON output to stdout.
// Development builds log at debug level.
func Setup(appEnv string) {
	slog.SetDefault(slog.New(StdoutHandler(appEnv)))
}

func StdoutHandler(appEnv string) slog.Handler {
	level := slog.LevelInfo
	if appEnv == "development" {
		level = slog.LevelDebug
	}
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
}

// Install replaces the default logger with one writing to all handlers.
func Install(handlers ...slog.Handler) {
	slog.SetDefault(slog.New(NewMultiHandler(handlers...)))
}
