package spindex

import (
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with spindex-specific context. It provides
// structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler. If handler is
// nil, a text handler to stderr at Info level is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{Logger: slog.New(handler)}
}

// LogBuild records the outcome of an index build.
func (l *Logger) LogBuild(algorithm string, shapes int, duration time.Duration, err error) {
	if err != nil {
		l.Error("index build failed",
			"algorithm", algorithm,
			"shapes", shapes,
			"duration", duration,
			"error", err,
		)
		return
	}
	l.Info("index built",
		"algorithm", algorithm,
		"shapes", shapes,
		"duration", duration,
	)
}

// LogQuery records the outcome of a true-kNN query.
func (l *Logger) LogQuery(k, results int, duration time.Duration, err error) {
	if err != nil {
		l.Error("query failed", "k", k, "duration", duration, "error", err)
		return
	}
	l.Debug("query served", "k", k, "results", results, "duration", duration)
}

// LogJoin records the outcome of a spatial join.
func (l *Logger) LogJoin(rows, k int, duration time.Duration) {
	l.Debug("join served", "rows", rows, "k", k, "duration", duration)
}
