package nvstore

import (
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with engine-specific helpers so field names
// stay consistent across the store and the loader.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, uses a default text handler to stderr.
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
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // unreachable level
	})
	return &Logger{Logger: slog.New(handler)}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{Logger: l.Logger.With("dimension", dim)}
}

// WithPath adds a path field to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{Logger: l.Logger.With("path", path)}
}

// LogFinalize logs the LOADING to SERVING transition.
func (l *Logger) LogFinalize(count int, normalized int, duration time.Duration) {
	l.Info("store finalized",
		"count", count,
		"normalized", normalized,
		"duration", duration,
	)
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(k, resultsFound int, duration time.Duration) {
	l.Debug("search completed",
		"k", k,
		"results", resultsFound,
		"duration", duration,
	)
}

// LogFileError logs a per-file ingest failure. One line per failed file.
func (l *Logger) LogFileError(path string, err error) {
	l.Warn("file failed", "path", path, "error", err)
}
