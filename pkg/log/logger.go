package log

import (
	"context"

	"go.uber.org/zap"
)

type logCtxKey int

// IntoContext attaches a logger to the context
func IntoContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, logCtxKey(0), logger)
}

// FromContext returns the logger stored in the context, falling back to the global logger
func FromContext(ctx context.Context) *zap.Logger {
	if val, ok := ctx.Value(logCtxKey(0)).(*zap.Logger); ok && val != nil {
		return val
	}
	zap.L().Warn("No logger in context, passing default")
	return zap.L()
}

// Named returns a context whose logger carries the given sub-scope
func Named(ctx context.Context, name string) context.Context {
	return IntoContext(ctx, FromContext(ctx).Named(name))
}
