package grpc

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/grpc"

	"github.com/xKoRx/hftgate/sdk/telemetry"
)

// LoggingUnaryServerInterceptor registra cada llamada unary con su duración y resultado.
func LoggingUnaryServerInterceptor(client *telemetry.Client) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		attrs := []attribute.KeyValue{
			attribute.String("rpc.method", info.FullMethod),
			attribute.String("rpc.system", "grpc"),
			attribute.Float64("rpc.duration_ms", float64(time.Since(start).Milliseconds())),
		}
		if err != nil {
			client.Error(ctx, "gRPC handler failed", err, attrs...)
		} else {
			client.Debug(ctx, "gRPC handler succeeded", attrs...)
		}
		return resp, err
	}
}

// LoggingStreamServerInterceptor registra apertura y cierre de streams (Watch).
func LoggingStreamServerInterceptor(client *telemetry.Client) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		start := time.Now()
		attrs := []attribute.KeyValue{
			attribute.String("rpc.method", info.FullMethod),
			attribute.String("rpc.system", "grpc"),
			attribute.String("rpc.type", "stream"),
		}
		client.Debug(ss.Context(), "gRPC stream handler started", attrs...)

		err := handler(srv, ss)

		attrs = append(attrs, attribute.Float64("rpc.duration_ms", float64(time.Since(start).Milliseconds())))
		if err != nil {
			client.Warn(ss.Context(), "gRPC stream handler ended with error", append(attrs, attribute.String("error", err.Error()))...)
		} else {
			client.Debug(ss.Context(), "gRPC stream handler completed", attrs...)
		}
		return err
	}
}
