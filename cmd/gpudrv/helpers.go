package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tsukumogami/gpudrv/internal/errmsg"
	"github.com/tsukumogami/gpudrv/internal/log"
)

// printError prints an error to w with suggestions if available.
// This uses the errmsg package to format errors with actionable suggestions.
func printError(w io.Writer, err error, ctx *errmsg.ErrorContext) {
	errmsg.Fprint(w, err, ctx)
}

// isTruthy reports whether an environment value switches a setting on.
func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// determineLogLevel resolves the verbosity flags and their environment
// equivalents. Flags win over the environment; within each, debug beats
// verbose beats quiet.
func determineLogLevel() slog.Level {
	switch {
	case debugFlag:
		return slog.LevelDebug
	case verboseFlag:
		return slog.LevelInfo
	case quietFlag:
		return slog.LevelError
	case isTruthy(os.Getenv("GPUDRV_DEBUG")):
		return slog.LevelDebug
	case isTruthy(os.Getenv("GPUDRV_VERBOSE")):
		return slog.LevelInfo
	case isTruthy(os.Getenv("GPUDRV_QUIET")):
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// newLogger builds the session logger. Every record goes to the rotating
// log file. Records also go to stderr when the level is raised to INFO or
// DEBUG; otherwise the menu keeps the terminal to itself.
func newLogger(level slog.Level, file log.FileOptions, stderr io.Writer) (log.Logger, io.Closer) {
	sink := log.NewFileSink(file)
	handlers := []slog.Handler{log.NewFileHandler(sink)}
	if level < slog.LevelWarn {
		handlers = append(handlers, slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	}
	return log.New(log.Fanout(handlers...)), sink
}
