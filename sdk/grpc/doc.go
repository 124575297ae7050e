// Package grpc expone el estado del gateway vía el servicio estándar de
// health checking de gRPC (grpc.health.v1).
//
// El servidor arranca en NOT_SERVING y el gateway lo pasa a SERVING sólo
// mientras la sesión con el broker está OPERATIONAL:
//
//	server, err := grpc.NewServer(grpc.DefaultServerConfig("127.0.0.1:50061"))
//	if err != nil {
//	    return err
//	}
//	go server.Serve(ctx)
//
//	server.SetServing(true)  // bootstrap completo
//	server.SetServing(false) // conexión perdida
//
// Los interceptors de logging registran cada llamada con su duración:
//
//	config := grpc.DefaultServerConfig(addr)
//	config.UnaryInterceptors = []grpc.UnaryServerInterceptor{
//	    grpc.LoggingUnaryServerInterceptor(telemetryClient),
//	}
package grpc
