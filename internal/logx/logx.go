// Package logx is the single diagnostics sink: I/O errors on input files,
// out-of-memory/decompression failures, and terminal-setup failures all
// go through here rather than directly to stdout, so they never corrupt
// match output. Built on log/slog with a text handler on stderr,
// installed as the package default.
package logx

import (
	"log/slog"
	"os"
)

// Level names accepted by --log-level and the config file's log_level.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Init installs a text handler on stderr at the given level and sets it
// as slog's package default, so every package can just call slog.Warn /
// slog.Error without holding a *slog.Logger of its own.
func Init(level string) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SkipFile logs that path was skipped during traversal or decompression,
// the warning channel the Traverser and pipeline route OnSkipError/
// ErrorFunc callbacks through.
func SkipFile(path string, err error) {
	slog.Warn("skipped file", "path", path, "error", err)
}

// TerminalSetupFailed logs that the interactive UI could not initialize
// the terminal (raw mode, alternate screen, or geometry probing).
func TerminalSetupFailed(err error) {
	slog.Error("terminal setup failed", "error", err)
}
