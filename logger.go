package measgo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with measgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithSession adds the session ID field to the logger.
func (l *Logger) WithSession(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("session", id),
	}
}

// LogAppend logs an admitted record append.
func (l *Logger) LogAppend(ctx context.Context, seq uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "append failed",
			"seq", seq,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "record appended",
			"seq", seq,
		)
	}
}

// LogMalformed logs a frame that failed to parse.
func (l *Logger) LogMalformed(ctx context.Context, frame string, err error) {
	l.WarnContext(ctx, "malformed frame dropped",
		"frame", frame,
		"error", err,
	)
}

// LogReject logs a record rejected by the filter stage.
func (l *Logger) LogReject(ctx context.Context) {
	l.DebugContext(ctx, "record rejected by filter")
}

// LogProject logs a matrix or vector projection.
func (l *Logger) LogProject(ctx context.Context, fields []string, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "projection failed",
			"fields", fields,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "projection completed",
			"fields", fields,
			"rows", rows,
		)
	}
}

// LogExport logs an interchange export.
func (l *Logger) LogExport(ctx context.Context, name string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "export failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "export completed",
			"name", name,
			"records", count,
		)
	}
}

// LogImport logs an interchange import.
func (l *Logger) LogImport(ctx context.Context, name string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "import failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "import completed",
			"name", name,
			"records", count,
		)
	}
}

// LogRun logs the end of an ingest run.
func (l *Logger) LogRun(ctx context.Context, stats Stats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "ingest run failed",
			"admitted", stats.Admitted,
			"rejected", stats.Rejected,
			"malformed", stats.Malformed,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "ingest run completed",
			"admitted", stats.Admitted,
			"rejected", stats.Rejected,
			"malformed", stats.Malformed,
		)
	}
}
