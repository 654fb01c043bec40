// Package logging builds the application's slog logger.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// New creates a *slog.Logger writing to w.
//
// Format "json" produces structured JSON output.
// Format "text" produces human-readable output with source info.
// The returned LevelVar is initialised from level and may be changed later
// to adjust verbosity without rebuilding the logger.
func New(level, format string, w io.Writer) (*slog.Logger, *slog.LevelVar) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(ParseLevel(level))

	opts := &slog.HandlerOptions{
		Level:     levelVar,
		AddSource: !strings.EqualFold(format, "json"),
	}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler), levelVar
}

// ParseLevel maps debug, info, warn and error (case-insensitive) to slog
// levels; anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
