package transport

import (
	"bufio"
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"time"

	"github.com/xKoRx/hftgate/sdk/telemetry"
	"github.com/xKoRx/hftgate/sdk/telemetry/semconv"
)

// FramedTransport es el enlace TLS hacia el broker.
//
// Cada payload viaja precedido por su longitud (uint32 big-endian). La
// política por defecto es NewBrokerPolicy.
type FramedTransport struct {
	*link
	addr string
}

// NewFramedTransport crea el transporte hacia addr ("host:port").
//
// Sin WithDialer usa TLS con verificación permisiva: el certificado se acepta
// siempre y su subject queda en el log.
func NewFramedTransport(addr string, events chan<- Event, opts ...Option) *FramedTransport {
	o := buildOptions("broker", NewBrokerPolicy(), opts)
	if o.dialer == nil {
		cfg := o.tlsConfig
		if cfg == nil {
			cfg = PermissiveTLSConfig(hostOf(addr), certificateLogger(o.tel, o.name))
		}
		o.dialer = TLSDialer(addr, cfg, o.dialTimeout)
	}

	maxSize := o.maxFrameSize
	read := func(r *bufio.Reader) ([]byte, error) {
		return ReadFrame(r, maxSize)
	}
	return &FramedTransport{
		link: newLink(o, events, read, WriteFrame),
		addr: addr,
	}
}

// Start lanza la goroutine de conexión. Retorna sin esperar al primer connect.
func (t *FramedTransport) Start(ctx context.Context) error { return t.start(ctx) }

// Send encola un payload; el prefijo de longitud se agrega al escribir.
func (t *FramedTransport) Send(payload []byte) error { return t.send(payload) }

// Connected indica si hay una conexión establecida.
func (t *FramedTransport) Connected() bool { return t.isConnected() }

// Recycle cierra la conexión actual y deja actuar a la política de reconexión.
func (t *FramedTransport) Recycle() { t.recycle() }

// Close detiene el transporte. Es idempotente.
func (t *FramedTransport) Close() error { return t.close() }

// Addr retorna la dirección configurada.
func (t *FramedTransport) Addr() string { return t.addr }

// TLSDialer crea un Dialer TLS sobre TCP.
func TLSDialer(addr string, cfg *tls.Config, timeout time.Duration) Dialer {
	d := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second},
		Config:    cfg,
	}
	return func(ctx context.Context) (net.Conn, error) {
		return d.DialContext(ctx, "tcp", addr)
	}
}

// PermissiveTLSConfig acepta cualquier certificado del servidor.
//
// onSubject recibe el subject del certificado hoja en cada handshake.
func PermissiveTLSConfig(serverName string, onSubject func(subject string)) *tls.Config {
	return &tls.Config{
		ServerName:         serverName,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: true, //nolint:gosec // el broker se autentica a nivel de aplicación
		VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			if len(rawCerts) == 0 || onSubject == nil {
				return nil
			}
			cert, err := x509.ParseCertificate(rawCerts[0])
			if err != nil {
				onSubject("unparseable certificate: " + err.Error())
				return nil
			}
			onSubject(cert.Subject.String())
			return nil
		},
	}
}

func certificateLogger(tel *telemetry.Client, name string) func(string) {
	return func(subject string) {
		if tel == nil {
			return
		}
		tel.Info(context.Background(), "Peer certificate accepted",
			semconv.Gateway.Transport.String(name),
			semconv.Gateway.Reason.String(subject),
		)
	}
}

func hostOf(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

