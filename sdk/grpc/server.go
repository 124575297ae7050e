package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

// ServiceName es el servicio reportado por el health server además del global ("").
const ServiceName = "hftgate.Gateway"

// ServerConfig configuración para el servidor de health.
type ServerConfig struct {
	// Address dirección de bind host:port (":0" elige un puerto libre)
	Address string

	// KeepAlive configuración de keepalive
	KeepAlive *ServerKeepAliveConfig

	// ShutdownGracePeriod periodo de gracia para shutdown
	ShutdownGracePeriod time.Duration

	UnaryInterceptors  []grpc.UnaryServerInterceptor
	StreamInterceptors []grpc.StreamServerInterceptor
}

// ServerKeepAliveConfig configuración de keepalive del servidor.
type ServerKeepAliveConfig struct {
	MaxConnectionIdle     time.Duration
	MaxConnectionAgeGrace time.Duration
	Time                  time.Duration
	Timeout               time.Duration
}

// DefaultServerConfig retorna configuración por defecto.
func DefaultServerConfig(address string) *ServerConfig {
	return &ServerConfig{
		Address:             address,
		ShutdownGracePeriod: 5 * time.Second,
		KeepAlive: &ServerKeepAliveConfig{
			MaxConnectionIdle:     5 * time.Minute,
			MaxConnectionAgeGrace: 1 * time.Minute,
			Time:                  2 * time.Hour,
			Timeout:               20 * time.Second,
		},
	}
}

// Server envuelve grpc.Server con el servicio de health registrado.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	config     *ServerConfig
	listener   net.Listener
}

// NewServer crea el servidor y abre el listener. El estado inicial es NOT_SERVING.
func NewServer(config *ServerConfig) (*Server, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	opts := []grpc.ServerOption{}
	if config.KeepAlive != nil {
		opts = append(opts, grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     config.KeepAlive.MaxConnectionIdle,
			MaxConnectionAgeGrace: config.KeepAlive.MaxConnectionAgeGrace,
			Time:                  config.KeepAlive.Time,
			Timeout:               config.KeepAlive.Timeout,
		}))
		opts = append(opts, grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             10 * time.Second,
			PermitWithoutStream: true,
		}))
	}
	if len(config.UnaryInterceptors) > 0 {
		opts = append(opts, grpc.ChainUnaryInterceptor(config.UnaryInterceptors...))
	}
	if len(config.StreamInterceptors) > 0 {
		opts = append(opts, grpc.ChainStreamInterceptor(config.StreamInterceptors...))
	}

	listener, err := net.Listen("tcp", config.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", config.Address, err)
	}

	grpcServer := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	s := &Server{
		grpcServer: grpcServer,
		health:     hs,
		config:     config,
		listener:   listener,
	}
	s.SetServing(false)
	return s, nil
}

// SetServing actualiza el estado global y el del servicio del gateway.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Address retorna la dirección efectiva del listener.
func (s *Server) Address() string {
	return s.listener.Addr().String()
}

// Serve bloquea hasta que el contexto se cancele o el servidor falle.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown hace un graceful stop; pasado ShutdownGracePeriod fuerza el cierre.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	timeout := s.config.ShutdownGracePeriod
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		s.grpcServer.Stop()
		return fmt.Errorf("forced shutdown after %v", timeout)
	case <-ctx.Done():
		s.grpcServer.Stop()
		return ctx.Err()
	}
}
