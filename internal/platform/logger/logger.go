package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Text output to stdout keeps local
// development readable; handlers and services receive this logger and attach
// request-scoped attributes themselves.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
