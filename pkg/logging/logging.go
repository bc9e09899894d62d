// Package logging configures structured logging with tint.
//
// Usage:
//
//	logging.Setup(os.Stderr, "warn")                 // level from config
//	logging.SetupWithLevel(os.Stderr, slog.LevelDebug) // explicit level
//
// Colour is enabled only when w is a terminal.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Setup configures logging to w at the named level (debug, info, warn,
// error). An unknown name means info.
func Setup(w io.Writer, level string) *slog.Logger {
	return SetupWithLevel(w, ParseLevel(level))
}

// SetupWithLevel configures logging to w at the given level, installs the
// logger as the slog default and returns it.
func SetupWithLevel(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  level <= slog.LevelDebug,
			NoColor:    !isTerminal(w),
		}),
	)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
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

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
