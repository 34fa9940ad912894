package utils

import (
	"context"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
)

// Logger is the logging interface shared by handlers and services.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)

	With(args ...any) Logger
	LogError(err error, msg string, args ...any)
}

type slogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps an existing slog.Logger.
func NewSlogLogger(logger *slog.Logger) Logger {
	return &slogLogger{logger: logger}
}

// NewDefaultLogger returns a JSON logger at info level for production use.
func NewDefaultLogger() Logger {
	return NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))
}

// NewDevelopmentLogger returns a text logger at debug level.
func NewDevelopmentLogger() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
}

func (l *slogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *slogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func (l *slogLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}

func (l *slogLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

func (l *slogLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

func (l *slogLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{logger: l.logger.With(args...)}
}

func (l *slogLogger) LogError(err error, msg string, args ...any) {
	l.logger.Error(msg, append([]any{"error", err}, args...)...)
}

// ToSlogLogger unwraps the underlying slog.Logger; services take *slog.Logger
// directly.
func ToSlogLogger(logger Logger) *slog.Logger {
	if sl, ok := logger.(*slogLogger); ok {
		return sl.logger
	}
	return slog.Default()
}

// LoggerMiddleware routes gin request logging through our logger.
func LoggerMiddleware(logger Logger) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		args := []any{
			"method", param.Method,
			"path", param.Path,
			"status_code", param.StatusCode,
			"duration", param.Latency.String(),
			"client_ip", param.ClientIP,
		}
		if param.StatusCode >= 500 {
			logger.Error("HTTP request", args...)
		} else if param.StatusCode >= 400 {
			logger.Warn("HTTP request", args...)
		} else {
			logger.Info("HTTP request", args...)
		}
		return ""
	})
}
