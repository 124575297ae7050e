package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
)

// Info registra un mensaje informativo
func (c *Client) Info(ctx context.Context, msg string, attrs ...attribute.KeyValue) {
	c.log(ctx, slog.LevelInfo, msg, nil, attrs)
}

// Error registra un mensaje de error
func (c *Client) Error(ctx context.Context, msg string, err error, attrs ...attribute.KeyValue) {
	c.log(ctx, slog.LevelError, msg, err, attrs)
}

// Warn registra un mensaje de advertencia
func (c *Client) Warn(ctx context.Context, msg string, attrs ...attribute.KeyValue) {
	c.log(ctx, slog.LevelWarn, msg, nil, attrs)
}

// Debug registra un mensaje de debug
func (c *Client) Debug(ctx context.Context, msg string, attrs ...attribute.KeyValue) {
	c.log(ctx, slog.LevelDebug, msg, nil, attrs)
}

func (c *Client) log(ctx context.Context, level slog.Level, msg string, err error, attrs []attribute.KeyValue) {
	if c == nil || c.logger == nil {
		return
	}
	if !c.logger.Enabled(ctx, level) {
		return
	}

	// Atributos del contexto primero, los explícitos los complementan
	common, event := GetCommonAttrs(ctx), GetEventAttrs(ctx)
	all := make([]attribute.KeyValue, 0, len(common)+len(event)+len(attrs))
	all = append(all, common...)
	all = append(all, event...)
	all = append(all, attrs...)

	args := convertAttrsToSlogArgs(all)
	if err != nil {
		args = append(args, slog.String("error", err.Error()))
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		args = append(args, slog.String("trace_id", traceID), slog.String("span_id", GetSpanID(ctx)))
	}
	c.logger.Log(ctx, level, msg, args...)
}

// convertAttrsToSlogArgs convierte atributos OTEL a argumentos slog
func convertAttrsToSlogArgs(attrs []attribute.KeyValue) []any {
	args := make([]any, 0, len(attrs)*2)
	for _, attr := range attrs {
		args = append(args, string(attr.Key), attr.Value.AsInterface())
	}
	return args
}
