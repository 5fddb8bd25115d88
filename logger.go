package spatialgo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with dataset-specific helpers, keeping field
// names consistent across operations.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler. If handler is nil, a
// text handler to stderr at info level is used.
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

// WithElement adds kind and name fields to the logger.
func (l *Logger) WithElement(kind, name string) *Logger {
	return &Logger{Logger: l.Logger.With("kind", kind, "name", name)}
}

// LogReferentialWarning logs a table pointing at a region absent from the
// dataset. Non-fatal: tables may be loaded independently of their targets.
func (l *Logger) LogReferentialWarning(ctx context.Context, table, region string) {
	l.WarnContext(ctx, "table references an absent element",
		"table", table,
		"region", region,
	)
}

// LogNotSelfContained logs an element depending on files outside the
// dataset's own store.
func (l *Logger) LogNotSelfContained(ctx context.Context, name string, files []string) {
	l.WarnContext(ctx, "element is not self-contained",
		"name", name,
		"backing_files", files,
	)
}

// LogSkippedMetadataWrite logs a metadata-only write that found no group
// for the element on disk and did nothing.
func (l *Logger) LogSkippedMetadataWrite(ctx context.Context, kind, name string) {
	l.WarnContext(ctx, "element group missing from store, metadata write skipped",
		"kind", kind,
		"name", name,
	)
}

// LogWrite logs a completed element write.
func (l *Logger) LogWrite(ctx context.Context, kind, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "element write failed",
			"kind", kind,
			"name", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "element written",
			"kind", kind,
			"name", name,
		)
	}
}
