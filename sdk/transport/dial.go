package transport

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

// EngineDialer resuelve la dirección del engine a un Dialer.
//
//	"127.0.0.1:9000"       → TCP
//	"tcp://127.0.0.1:9000" → TCP
//	"pipe://hft_engine"    → Named Pipe \\.\pipe\hft_engine (sólo Windows)
func EngineDialer(address string, timeout time.Duration) (Dialer, error) {
	scheme, target := splitScheme(address)
	if target == "" {
		return nil, fmt.Errorf("engine address %q is empty", address)
	}

	switch scheme {
	case "", "tcp":
		d := &net.Dialer{Timeout: timeout}
		return func(ctx context.Context) (net.Conn, error) {
			return d.DialContext(ctx, "tcp", target)
		}, nil
	case "pipe":
		return pipeDialer(target, timeout)
	default:
		return nil, fmt.Errorf("unsupported engine address scheme %q", scheme)
	}
}

func splitScheme(address string) (string, string) {
	address = strings.TrimSpace(address)
	if i := strings.Index(address, "://"); i >= 0 {
		return strings.ToLower(address[:i]), address[i+3:]
	}
	return "", address
}
