package transport

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/xKoRx/hftgate/sdk/telemetry"
)

// Dialer abre una conexión nueva. Se invoca una vez por intento.
type Dialer func(ctx context.Context) (net.Conn, error)

// DefaultDialTimeout acota cada intento de conexión.
const DefaultDialTimeout = 10 * time.Second

type options struct {
	name         string
	dialer       Dialer
	policy       backoff.BackOff
	tel          *telemetry.Client
	tlsConfig    *tls.Config
	dialTimeout  time.Duration
	maxFrameSize int
	maxLineSize  int
}

// Option configura un transporte.
type Option func(*options)

// WithName cambia el nombre con el que el transporte etiqueta eventos y logs.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithDialer reemplaza el dialer por defecto (tests, proxies).
func WithDialer(d Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithPolicy reemplaza la política de reconexión.
func WithPolicy(p backoff.BackOff) Option {
	return func(o *options) { o.policy = p }
}

// WithTelemetry habilita logs y métricas del transporte.
func WithTelemetry(tel *telemetry.Client) Option {
	return func(o *options) { o.tel = tel }
}

// WithTLSConfig reemplaza la configuración TLS del enlace framed.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) { o.tlsConfig = cfg }
}

// WithDialTimeout cambia el timeout de cada intento de conexión.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) { o.dialTimeout = d }
}

// WithMaxFrameSize cambia el tamaño máximo de frame aceptado.
func WithMaxFrameSize(n int) Option {
	return func(o *options) { o.maxFrameSize = n }
}

// WithMaxLineSize cambia el largo máximo de línea aceptado.
func WithMaxLineSize(n int) Option {
	return func(o *options) { o.maxLineSize = n }
}

func buildOptions(name string, policy backoff.BackOff, opts []Option) options {
	o := options{
		name:         name,
		policy:       policy,
		dialTimeout:  DefaultDialTimeout,
		maxFrameSize: DefaultMaxFrameSize,
		maxLineSize:  DefaultMaxLineSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
