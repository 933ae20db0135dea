package httpx

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey int

const (
	traceIDKey ctxKey = iota
	loggerKey
)

func WithTrace(ctx context.Context, traceID string, logger *zap.Logger) context.Context {
	ctx = context.WithValue(ctx, traceIDKey, traceID)
	return context.WithValue(ctx, loggerKey, logger)
}

func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}

// Logger returns the request scoped logger, or a no-op logger outside a request.
func Logger(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}
