// Package log configures the process-wide slog logger.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a flag value to a slog level, defaulting to info.
func ParseLevel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
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

// NewHandler returns a text handler, or a JSON handler when format is "json".
func NewHandler(w io.Writer, logLevel, format string) slog.Handler {
	options := &slog.HandlerOptions{Level: ParseLevel(logLevel)}

	if format == "json" {
		return slog.NewJSONHandler(w, options)
	}

	return slog.NewTextHandler(w, options)
}

func Setup(logLevel, format string) {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, logLevel, format)))
}

func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
