// Package telemetry proporciona observabilidad para el gateway mediante los tres pilares:
//
//  1. Logs: registro estructurado JSON (log/slog) con atributos OpenTelemetry
//  2. Métricas: OpenTelemetry exportadas por OTLP gRPC
//  3. Trazas: OpenTelemetry exportadas por OTLP gRPC
//
// Uso básico:
//
//	client, err := telemetry.New(ctx, "hftgate", "production",
//	    telemetry.WithOTLPEndpoint("otel-collector:4317"),
//	    telemetry.WithLogLevel("DEBUG"),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Shutdown(ctx)
//
//	client.Info(ctx, "Bootstrap completed",
//	    semconv.Gateway.AccountID.Int64(12345),
//	)
//
//	ctx, span := client.StartSpan(ctx, "bootstrap.app_authorization")
//	defer span.End()
//
//	client.GatewayMetrics().RecordTick(ctx, "EURUSD")
//
// En tests se deshabilitan los exporters:
//
//	client, _ := telemetry.New(ctx, "test", "test",
//	    telemetry.WithLogsDisabled(),
//	    telemetry.WithMetricsDisabled(),
//	    telemetry.WithTracesDisabled(),
//	)
package telemetry
