//go:build !windows

package transport

import (
	"errors"
	"time"
)

func pipeDialer(string, time.Duration) (Dialer, error) {
	return nil, errors.New("named pipe engine address is only supported on windows")
}
