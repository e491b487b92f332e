package app

import (
	"log/slog"
	"os"
)

// NewLogger returns a slog.Logger shaped by the APP_ENV config value:
// "prod" gets JSON logs at INFO level, anything else (the "dev"
// default) gets text logs at DEBUG level so ws.connected/room.* events
// are visible while developing.
func NewLogger(env string) *slog.Logger {
	var handler slog.Handler
	if env == "prod" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.New(handler)
}
