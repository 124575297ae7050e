//go:build windows

package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/Microsoft/go-winio"
)

func pipeDialer(name string, timeout time.Duration) (Dialer, error) {
	path := fmt.Sprintf(`\\.\pipe\%s`, name)
	return func(ctx context.Context) (net.Conn, error) {
		dialCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return winio.DialPipeContext(dialCtx, path)
	}, nil
}
