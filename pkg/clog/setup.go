package clog

import (
	"io"
	"log/slog"
)

// NewHandler returns the process log handler: colored text for local
// environments, JSON everywhere else, both carrying context attributes.
func NewHandler(w io.Writer, env string, level slog.Level) slog.Handler {
	var handler slog.Handler
	if env == "local" {
		handler = NewTextHandler(w, WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return NewAttributesHandler(handler)
}
