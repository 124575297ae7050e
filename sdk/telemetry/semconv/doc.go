// Package semconv define convenciones semánticas para atributos OpenTelemetry
// utilizados en el sistema de telemetría del gateway.
//
// Cada dominio tiene su propio conjunto de atributos predefinidos:
//
//	// Para el dominio broker ↔ engine
//	gwAttrs := []attribute.KeyValue{
//	    semconv.Gateway.Instrument.String("EURUSD"),
//	    semconv.Gateway.PayloadType.Int(2126),
//	}
//
//	// Dimensiones de métricas
//	metricAttrs := []attribute.KeyValue{
//	    semconv.Metrics.Transport.String("broker"),
//	}
package semconv
