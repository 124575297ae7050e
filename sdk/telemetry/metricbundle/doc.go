// Package metricbundle agrupa los instrumentos OpenTelemetry del gateway.
//
// Un bundle se crea una vez a partir de un metric.Meter y expone métodos
// Record* tipados, de modo que los componentes no manipulen nombres de
// métricas sueltos.
//
//	metrics, err := metricbundle.NewGatewayMetrics(meter)
//	if err != nil {
//	    return err
//	}
//	metrics.RecordFrame(ctx, "in", 2131)
package metricbundle
