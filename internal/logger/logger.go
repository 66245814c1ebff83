package logger

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// New creates a tint-backed logger writing to w.
func New(w io.Writer, level slog.Level, color bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    !color,
	}))
}

// Level maps the --debug switch to a slog level.
func Level(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// Setup installs a logger as the slog default and returns it.
func Setup(w io.Writer, debug, color bool) *slog.Logger {
	l := New(w, Level(debug), color)
	slog.SetDefault(l)
	return l
}

// Error creates a structured error field
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}
