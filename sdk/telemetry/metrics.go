package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RecordCounter incrementa un contador ad-hoc.
//
// Se agregan los atributos comunes y de métrica presentes en el contexto.
func (c *Client) RecordCounter(ctx context.Context, name string, value int64, attrs ...attribute.KeyValue) {
	if c == nil {
		return
	}
	counter, err := c.GetOrCreateCounter(name, "")
	if err != nil {
		c.Error(ctx, "failed to get counter", err, attribute.String("counter_name", name))
		return
	}

	counter.Add(ctx, value, metric.WithAttributes(metricAttrs(ctx, attrs)...))
}

// RecordHistogram registra un valor en un histograma ad-hoc
func (c *Client) RecordHistogram(ctx context.Context, name string, value float64, attrs ...attribute.KeyValue) {
	if c == nil {
		return
	}
	histogram, err := c.GetOrCreateHistogram(name, "")
	if err != nil {
		c.Error(ctx, "failed to get histogram", err, attribute.String("histogram_name", name))
		return
	}

	histogram.Record(ctx, value, metric.WithAttributes(metricAttrs(ctx, attrs)...))
}

func metricAttrs(ctx context.Context, attrs []attribute.KeyValue) []attribute.KeyValue {
	common, fromCtx := GetCommonAttrs(ctx), GetMetricAttrs(ctx)
	out := make([]attribute.KeyValue, 0, len(common)+len(fromCtx)+len(attrs))
	out = append(out, common...)
	out = append(out, fromCtx...)
	return append(out, attrs...)
}
