package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Level defaults to info; set LOG_LEVEL=debug
// for verbose output.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
