package semconv

import (
	"go.opentelemetry.io/otel/attribute"
)

// Metrics define las convenciones semánticas para atributos OpenTelemetry
// usados en la recolección y categorización de métricas del sistema.
//
// Son las dimensiones de las métricas de metricbundle.GatewayMetrics.
var Metrics struct {
	// Status indica el estado de la operación que se está midiendo.
	// Valores comunes: "ok", "error", "retry", "timeout", etc.
	Status attribute.Key

	// Result representa el resultado final de la operación.
	// Valores comunes: "success", "failure", "partial", etc.
	Result attribute.Key

	// Action identifica la acción que se realizó.
	// Valores comunes: "create", "update", "delete", "process", etc.
	Action attribute.Key

	// Service identifica el servicio que genera la métrica.
	// Ejemplos: "hftgate".
	Service attribute.Key

	// Component identifica el componente específico dentro del servicio.
	// Ejemplos: "gateway", "reconciler", "relay".
	Component attribute.Key

	// Env identifica el entorno de ejecución.
	// Valores comunes: "development", "staging", "production", etc.
	Env attribute.Key

	// Instrument identifica el ticker operado.
	// Ejemplos: "EURUSD", "GBPUSD".
	Instrument attribute.Key

	// Strategy identifica la variante de estrategia activa.
	// Valores: "relay", "passive".
	Strategy attribute.Key

	// Transport identifica el enlace ("broker" o "engine").
	Transport attribute.Key

	// Stage identifica la etapa del bootstrap.
	Stage attribute.Key

	// PayloadType es el tag numérico del envelope del broker.
	PayloadType attribute.Key

	// Operation identifica la operación de advice ("LONG", "SHORT", "close").
	Operation attribute.Key
}

func init() {
	// Inicialización de atributos de estado y resultado
	Metrics.Status = attribute.Key("status")
	Metrics.Result = attribute.Key("result")
	Metrics.Action = attribute.Key("action")

	// Inicialización de atributos de servicio
	Metrics.Service = attribute.Key("service")
	Metrics.Component = attribute.Key("component")

	// Inicialización de atributos de entorno
	Metrics.Env = attribute.Key("env")

	// Inicialización de atributos de negocio
	Metrics.Instrument = attribute.Key("instrument")
	Metrics.Strategy = attribute.Key("strategy")

	// Inicialización de atributos de protocolo
	Metrics.Transport = attribute.Key("transport")
	Metrics.Stage = attribute.Key("stage")
	Metrics.PayloadType = attribute.Key("payload_type")
	Metrics.Operation = attribute.Key("operation")
}
