package logger

import (
	"log/slog"
	"os"
)

// New returns the service-wide structured logger. Level defaults to info;
// LOG_LEVEL=debug turns on debug output.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
