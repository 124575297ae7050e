package telemetry

import (
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
)

// Config contiene la configuración para el cliente de telemetría
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	// OTLP Collector endpoints
	// Traces y métricas pueden vivir en endpoints/puertos distintos
	OTLPEndpoint        string // si se setea, aplica a ambos cuando los específicos están vacíos
	OTLPTracesEndpoint  string
	OTLPMetricsEndpoint string

	// Logs
	LogLevel  string    // DEBUG, INFO, WARN, ERROR
	LogWriter io.Writer // destino del handler JSON (default: stdout)

	// Atributos comunes a todos los logs, métricas y trazas
	CommonAttributes []attribute.KeyValue

	// Habilitar/deshabilitar componentes
	EnableLogs    bool
	EnableMetrics bool
	EnableTraces  bool
}

// DefaultConfig retorna una configuración con valores por defecto
func DefaultConfig(serviceName, environment string) Config {
	return Config{
		ServiceName:      serviceName,
		ServiceVersion:   "0.0.1",
		Environment:      environment,
		OTLPEndpoint:     "localhost:4317",
		LogLevel:         "INFO",
		LogWriter:        os.Stdout,
		EnableLogs:       true,
		EnableMetrics:    true,
		EnableTraces:     true,
		CommonAttributes: []attribute.KeyValue{},
	}
}

func (c Config) tracesEndpoint() string {
	if c.OTLPTracesEndpoint != "" {
		return c.OTLPTracesEndpoint
	}
	return c.OTLPEndpoint
}

func (c Config) metricsEndpoint() string {
	if c.OTLPMetricsEndpoint != "" {
		return c.OTLPMetricsEndpoint
	}
	return c.OTLPEndpoint
}

// Option es una función que modifica la configuración
type Option func(*Config)

// WithVersion establece la versión del servicio
func WithVersion(version string) Option {
	return func(c *Config) {
		c.ServiceVersion = version
	}
}

// WithOTLPEndpoint establece el endpoint del collector
func WithOTLPEndpoint(endpoint string) Option {
	return func(c *Config) {
		c.OTLPEndpoint = endpoint
	}
}

// WithTracesEndpoint establece endpoint específico para trazas
func WithTracesEndpoint(endpoint string) Option {
	return func(c *Config) { c.OTLPTracesEndpoint = endpoint }
}

// WithMetricsEndpoint establece endpoint específico para métricas
func WithMetricsEndpoint(endpoint string) Option {
	return func(c *Config) { c.OTLPMetricsEndpoint = endpoint }
}

// WithLogLevel establece el nivel mínimo de log (DEBUG, INFO, WARN, ERROR)
func WithLogLevel(level string) Option {
	return func(c *Config) { c.LogLevel = level }
}

// WithLogWriter redirige los logs JSON (útil en tests)
func WithLogWriter(w io.Writer) Option {
	return func(c *Config) { c.LogWriter = w }
}

// WithCommonAttributes añade atributos comunes
func WithCommonAttributes(attrs ...attribute.KeyValue) Option {
	return func(c *Config) {
		c.CommonAttributes = append(c.CommonAttributes, attrs...)
	}
}

// WithLogsDisabled deshabilita logs
func WithLogsDisabled() Option {
	return func(c *Config) {
		c.EnableLogs = false
	}
}

// WithMetricsDisabled deshabilita métricas
func WithMetricsDisabled() Option {
	return func(c *Config) {
		c.EnableMetrics = false
	}
}

// WithTracesDisabled deshabilita trazas
func WithTracesDisabled() Option {
	return func(c *Config) {
		c.EnableTraces = false
	}
}
