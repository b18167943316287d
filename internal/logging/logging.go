package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/google/uuid"
)

type logContextKey string

const loggerKey = logContextKey("logger")

// New builds the process logger. Format "text" selects the text handler,
// anything else JSON.
func New(cfg config.Log, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// WithCommand returns a context holding a logger scoped to one CLI command
// invocation.
func WithCommand(ctx context.Context, base *slog.Logger, command string) context.Context {
	commandLogger := base.With(
		slog.String("invocation_id", uuid.NewString()),
		slog.String("command", command),
	)

	return WithLogger(ctx, commandLogger)
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}

	return slog.Default()
}

// FromContextOr is LoggerFromContext with a caller chosen fallback, for
// components that own a logger but should prefer the invocation's one.
func FromContextOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}

	return fallback
}
