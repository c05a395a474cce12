// Package logging provides small helpers around log/slog so that operational
// events, errors, and HTTP requests are logged with a consistent shape across
// the application.
package logging

import (
	"context"
	"io"
	"log/slog"
)

type contextKey string

const loggerKey contextKey = "logger"

// WithLogger returns a context carrying the given logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored in the context, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// LogOperation records a structured operational event.
func LogOperation(logger *slog.Logger, operation string, attrs ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info(operation, attrs...)
}

// LogError records an error with its message attached as an attribute.
func LogError(logger *slog.Logger, message string, err error, attrs ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	args := make([]any, 0, len(attrs)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, attrs...)
	logger.Error(message, args...)
}

// LogHTTPRequest records a completed HTTP request.
func LogHTTPRequest(logger *slog.Logger, method, path string, status int, durationMs float64, attrs ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	args := make([]any, 0, len(attrs)+4)
	args = append(args,
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("duration_ms", durationMs))
	args = append(args, attrs...)
	logger.Info("http_request", args...)
}

// SafeCloseWithLogging closes the closer and logs a failure instead of
// returning it. Intended for defer sites where the close error is not
// actionable.
func SafeCloseWithLogging(c io.Closer, logger *slog.Logger, name string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		LogError(logger, "failed to close "+name, err)
	}
}
