package logger

import (
	"context"

	"go.uber.org/zap"
)

type fieldsKey struct{}

// WithFields 在 ctx 上追加日志字段（如 request_id、session_id），后续 Ctx(ctx) 取出的日志会自动携带
func WithFields(ctx context.Context, kv ...interface{}) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(kv) == 0 {
		return ctx
	}
	existing, _ := ctx.Value(fieldsKey{}).([]interface{})
	merged := make([]interface{}, 0, len(existing)+len(kv))
	merged = append(merged, existing...)
	merged = append(merged, kv...)
	return context.WithValue(ctx, fieldsKey{}, merged)
}

// Fields 返回 ctx 上累积的日志字段
func Fields(ctx context.Context) []interface{} {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).([]interface{})
	return fields
}

// Ctx 返回携带 ctx 字段的 SugaredLogger
func Ctx(ctx context.Context) *zap.SugaredLogger {
	return SW(Fields(ctx)...)
}
