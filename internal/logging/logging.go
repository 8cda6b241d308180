// Package logging wraps zap with the operation_id correlation convention
// used across the model services, reconciler, and GitOps writer.
package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type operationIDKeyType struct{}

var operationIDKey = operationIDKeyType{}

// New creates a named zap production logger at the given level.
func New(name string, level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger.Named(name)
}

// WithOperationID returns ctx carrying operationID for later retrieval by L.
func WithOperationID(ctx context.Context, operationID string) context.Context {
	return context.WithValue(ctx, operationIDKey, operationID)
}

// OperationID retrieves the operation id stored by WithOperationID, if any.
func OperationID(ctx context.Context) string {
	if id, ok := ctx.Value(operationIDKey).(string); ok {
		return id
	}
	return ""
}

// L returns base enriched with the operation_id field from ctx, if present.
func L(ctx context.Context, base *zap.Logger) *zap.Logger {
	if id := OperationID(ctx); id != "" {
		return base.With(zap.String("operation_id", id))
	}
	return base
}
