// Package transport implementa los dos enlaces del gateway.
//
//   - FramedTransport: TLS hacia el broker, cada mensaje precedido por su
//     longitud en 4 bytes big-endian.
//   - LineTransport: TCP (o Named Pipe en Windows) hacia el engine, un mensaje
//     por línea terminada en '\n'.
//
// Ambos comparten el mismo ciclo de vida:
//
//  1. Start lanza una goroutine que conecta y reconecta según una política
//     backoff.BackOff (cenkalti/backoff).
//  2. Cada conexión tiene un lector secuencial y un único escritor que drena
//     una cola FIFO: nunca hay más de una escritura en vuelo.
//  3. Todo lo observable se publica como Event en el canal del llamador:
//     EventConnected, EventData, EventError y EventFatal.
//  4. Close cancela el timer de reconexión y la I/O en curso. Tras Close no
//     se publican más eventos.
//
// Los fallos de conexión no generan EventError (sólo los fallos de una
// conexión ya establecida). Agotar la política de reintentos produce un único
// EventFatal y la goroutine termina.
//
// Example:
//
//	events := make(chan transport.Event, 256)
//	broker := transport.NewFramedTransport("demo.ctraderapi.com:5035", events,
//	    transport.WithTelemetry(tel),
//	)
//	if err := broker.Start(ctx); err != nil {
//	    return err
//	}
//	defer broker.Close()
//
//	for ev := range events {
//	    switch ev.Kind {
//	    case transport.EventData:
//	        // ev.Data contiene el payload sin prefijo
//	    }
//	}
package transport
