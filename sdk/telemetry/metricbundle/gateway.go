package metricbundle

import (
	"context"

	"github.com/xKoRx/hftgate/sdk/telemetry/semconv"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// GatewayMetrics bundle de métricas del gateway broker ↔ engine.
//
// # Métricas de Conteo
//
//   - hftgate.frames: envelopes del broker (direction=in/out, payload_type)
//   - hftgate.reconnects: intentos de reconexión por transporte
//   - hftgate.ticks: ticks entregados a la estrategia
//   - hftgate.advice.operations: operaciones de advice (operation, status)
//   - hftgate.positions.events: eventos de posición (open/close/open_error/close_error)
//   - hftgate.protocol.violations: líneas del engine descartadas por violar el protocolo
//
// # Histogramas
//
//   - hftgate.bootstrap.stage_duration: duración de cada etapa del handshake (segundos)
type GatewayMetrics struct {
	Frames             metric.Int64Counter
	Reconnects         metric.Int64Counter
	Ticks              metric.Int64Counter
	AdviceOperations   metric.Int64Counter
	PositionEvents     metric.Int64Counter
	ProtocolViolations metric.Int64Counter

	StageDuration metric.Float64Histogram
}

// NewGatewayMetrics crea el bundle sobre el meter dado.
func NewGatewayMetrics(meter metric.Meter) (*GatewayMetrics, error) {
	frames, err := meter.Int64Counter(
		"hftgate.frames",
		metric.WithDescription("Envelopes del broker recibidos y enviados"),
		metric.WithUnit("{frame}"),
	)
	if err != nil {
		return nil, err
	}

	reconnects, err := meter.Int64Counter(
		"hftgate.reconnects",
		metric.WithDescription("Intentos de reconexión por transporte"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	ticks, err := meter.Int64Counter(
		"hftgate.ticks",
		metric.WithDescription("Ticks con ask y bid positivos entregados a la estrategia"),
		metric.WithUnit("{tick}"),
	)
	if err != nil {
		return nil, err
	}

	advice, err := meter.Int64Counter(
		"hftgate.advice.operations",
		metric.WithDescription("Operaciones de advice recibidas del engine"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	positions, err := meter.Int64Counter(
		"hftgate.positions.events",
		metric.WithDescription("Eventos de ciclo de vida de posiciones"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	violations, err := meter.Int64Counter(
		"hftgate.protocol.violations",
		metric.WithDescription("Mensajes del engine descartados por violar el protocolo"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"hftgate.bootstrap.stage_duration",
		metric.WithDescription("Duración de cada etapa del bootstrap"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &GatewayMetrics{
		Frames:             frames,
		Reconnects:         reconnects,
		Ticks:              ticks,
		AdviceOperations:   advice,
		PositionEvents:     positions,
		ProtocolViolations: violations,
		StageDuration:      stageDuration,
	}, nil
}

// RecordFrame registra un envelope del broker. direction es "in" u "out".
func (m *GatewayMetrics) RecordFrame(ctx context.Context, direction string, payloadType uint32) {
	if m == nil {
		return
	}
	m.Frames.Add(ctx, 1, metric.WithAttributes(
		attribute.String("direction", direction),
		semconv.Metrics.PayloadType.Int64(int64(payloadType)),
	))
}

// RecordReconnect registra un intento de reconexión.
func (m *GatewayMetrics) RecordReconnect(ctx context.Context, transport string) {
	if m == nil {
		return
	}
	m.Reconnects.Add(ctx, 1, metric.WithAttributes(semconv.Metrics.Transport.String(transport)))
}

// RecordTick registra un tick entregado a la estrategia.
func (m *GatewayMetrics) RecordTick(ctx context.Context, instrument string) {
	if m == nil {
		return
	}
	m.Ticks.Add(ctx, 1, metric.WithAttributes(semconv.Metrics.Instrument.String(instrument)))
}

// RecordAdviceOperation registra una operación de advice y su resultado.
func (m *GatewayMetrics) RecordAdviceOperation(ctx context.Context, operation, status string) {
	if m == nil {
		return
	}
	m.AdviceOperations.Add(ctx, 1, metric.WithAttributes(
		semconv.Metrics.Operation.String(operation),
		semconv.Metrics.Status.String(status),
	))
}

// RecordPositionEvent registra un evento de posición.
func (m *GatewayMetrics) RecordPositionEvent(ctx context.Context, event, instrument string) {
	if m == nil {
		return
	}
	m.PositionEvents.Add(ctx, 1, metric.WithAttributes(
		semconv.Metrics.Action.String(event),
		semconv.Metrics.Instrument.String(instrument),
	))
}

// RecordProtocolViolation registra una línea del engine descartada.
func (m *GatewayMetrics) RecordProtocolViolation(ctx context.Context, field string) {
	if m == nil {
		return
	}
	m.ProtocolViolations.Add(ctx, 1, metric.WithAttributes(attribute.String("field", field)))
}

// RecordStageDuration registra la duración de una etapa del bootstrap.
func (m *GatewayMetrics) RecordStageDuration(ctx context.Context, stage string, seconds float64) {
	if m == nil {
		return
	}
	m.StageDuration.Record(ctx, seconds, metric.WithAttributes(semconv.Metrics.Stage.String(stage)))
}
