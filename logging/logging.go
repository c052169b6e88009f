// Package logging installs the process-wide slog handler.
package logging

import (
	"log/slog"
	"os"
)

// New returns a logger writing to f: text when f is a terminal, JSON
// otherwise. The returned LevelVar can be adjusted at runtime.
func New(f *os.File, verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(f) {
		handler = slog.NewTextHandler(f, opts)
	} else {
		handler = slog.NewJSONHandler(f, opts)
	}

	return slog.New(handler), level
}

// Setup makes New's logger the default for slog and the log package.
func Setup(verbose bool) *slog.LevelVar {
	logger, level := New(os.Stdout, verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())
	return level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
