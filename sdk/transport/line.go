package transport

import (
	"bufio"
	"context"
	"io"
)

// LineTransport es el enlace hacia el engine: un mensaje por línea.
//
// La política por defecto es NewEnginePolicy. Las líneas vacías se descartan
// y los fragmentos parciales se acumulan hasta recibir '\n'. Una línea por
// encima de DefaultMaxLineSize corta la conexión como cualquier error de lectura.
type LineTransport struct {
	*link
	addr string
}

// NewLineTransport crea el transporte hacia addr.
//
// addr acepta "host:port", "tcp://host:port" o, en Windows, "pipe://nombre".
// Si la dirección no es válida el error se reporta en Start.
func NewLineTransport(addr string, events chan<- Event, opts ...Option) *LineTransport {
	o := buildOptions("engine", NewEnginePolicy(), opts)
	if o.dialer == nil {
		if d, err := EngineDialer(addr, o.dialTimeout); err == nil {
			o.dialer = d
		}
	}
	maxSize := o.maxLineSize
	read := func(r *bufio.Reader) ([]byte, error) {
		return ReadLine(r, maxSize)
	}
	return &LineTransport{
		link: newLink(o, events, read, writeRaw),
		addr: addr,
	}
}

// Start lanza la goroutine de conexión.
func (t *LineTransport) Start(ctx context.Context) error {
	if t.opts.dialer == nil {
		_, err := EngineDialer(t.addr, t.opts.dialTimeout)
		return err
	}
	return t.start(ctx)
}

// Send encola una línea. El llamador incluye el '\n' final.
func (t *LineTransport) Send(line []byte) error { return t.send(line) }

func (t *LineTransport) Connected() bool { return t.isConnected() }

func (t *LineTransport) Recycle() { t.recycle() }

// Close detiene el transporte. Es idempotente.
func (t *LineTransport) Close() error { return t.close() }

func (t *LineTransport) Addr() string { return t.addr }

func writeRaw(w io.Writer, payload []byte) error {
	_, err := w.Write(payload)
	return err
}
