package spectral

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with spectral-specific helpers.
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

// WithDataset adds a dataset field to the logger.
func (l *Logger) WithDataset(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("dataset", name),
	}
}

// WithCodeLength adds a code_length field to the logger.
func (l *Logger) WithCodeLength(bits int) *Logger {
	return &Logger{
		Logger: l.Logger.With("code_length", bits),
	}
}

// LogFit logs a codec training stage.
func (l *Logger) LogFit(ctx context.Context, bits, rows, dim int, dur time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "fit failed",
			"code_length", bits,
			"rows", rows,
			"dim", dim,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "codec fitted",
		"code_length", bits,
		"rows", rows,
		"dim", dim,
		"dur", dur,
	)
}

// LogEncode logs an encode stage.
func (l *Logger) LogEncode(ctx context.Context, split string, rows int, dur time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "encode failed",
			"split", split,
			"rows", rows,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "split encoded",
		"split", split,
		"rows", rows,
		"dur", dur,
	)
}

// LogEvaluate logs an evaluation stage.
func (l *Logger) LogEvaluate(ctx context.Context, queries int, mAP float64, dur time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "evaluation failed",
			"queries", queries,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "evaluated",
		"queries", queries,
		"map", mAP,
		"dur", dur,
	)
}

// LogCheckpoint logs a checkpoint write.
func (l *Logger) LogCheckpoint(ctx context.Context, name string, dur time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "checkpoint write failed",
			"checkpoint", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "checkpoint written",
		"checkpoint", name,
		"dur", dur,
	)
}
