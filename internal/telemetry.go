package internal

import (
	"context"
	"fmt"

	"github.com/xKoRx/hftgate/sdk/telemetry"
	"github.com/xKoRx/hftgate/sdk/telemetry/semconv"
)

// InitTelemetry inicializa el cliente de telemetría del gateway.
//
// Sin otlp_endpoint no se exportan trazas ni métricas: los logs quedan en stdout.
func InitTelemetry(ctx context.Context, config *Config, opts ...telemetry.Option) (*telemetry.Client, error) {
	base := []telemetry.Option{
		telemetry.WithVersion(config.ServiceVersion),
		telemetry.WithLogLevel(config.LogLevel),
		telemetry.WithCommonAttributes(
			semconv.Gateway.AccountID.Int64(config.AccountID),
			semconv.Gateway.SessionID.String(config.SessionID),
		),
	}
	if config.OTLPEndpoint != "" {
		base = append(base, telemetry.WithOTLPEndpoint(config.OTLPEndpoint))
	} else {
		base = append(base, telemetry.WithTracesDisabled(), telemetry.WithMetricsDisabled())
	}

	client, err := telemetry.New(ctx, config.ServiceName, config.Environment, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to init telemetry: %w", err)
	}
	return client, nil
}
