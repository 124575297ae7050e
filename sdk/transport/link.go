package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xKoRx/hftgate/sdk/telemetry/semconv"
)

var (
	// ErrNotConnected se retorna al enviar sin conexión establecida.
	ErrNotConnected = errors.New("transport not connected")
	// ErrClosed se retorna al operar sobre un transporte cerrado.
	ErrClosed = errors.New("transport closed")
	// ErrAlreadyStarted se retorna si Start se invoca dos veces.
	ErrAlreadyStarted = errors.New("transport already started")
	// ErrRetriesExhausted acompaña al EventFatal cuando la política se agota.
	ErrRetriesExhausted = errors.New("reconnect attempts exhausted")
)

type readFunc func(r *bufio.Reader) ([]byte, error)
type writeFunc func(w io.Writer, payload []byte) error

// link es el ciclo connect → serve → backoff compartido por ambos transportes.
type link struct {
	opts   options
	events chan<- Event
	read   readFunc
	write  writeFunc

	mu        sync.Mutex
	conn      net.Conn
	connected bool
	closed    bool
	queue     [][]byte
	wake      chan struct{}
	cancel    context.CancelFunc
	done      chan struct{}
	attempts  int
}

func newLink(opts options, events chan<- Event, read readFunc, write writeFunc) *link {
	return &link{
		opts:   opts,
		events: events,
		read:   read,
		write:  write,
		wake:   make(chan struct{}, 1),
	}
}

func (l *link) start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	if l.cancel != nil {
		return ErrAlreadyStarted
	}
	if l.opts.dialer == nil {
		return fmt.Errorf("%s: dialer not configured", l.opts.name)
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	go l.run(runCtx)
	return nil
}

// send encola una copia del payload. Nunca bloquea por I/O.
func (l *link) send(payload []byte) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if !l.connected {
		l.mu.Unlock()
		return ErrNotConnected
	}
	item := make([]byte, len(payload))
	copy(item, payload)
	l.queue = append(l.queue, item)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

func (l *link) isConnected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

// recycle descarta la conexión actual; el ciclo de reconexión sigue su curso.
func (l *link) recycle() {
	l.mu.Lock()
	conn := l.conn
	l.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

// close es idempotente. Al retornar la goroutine de conexión ya terminó.
func (l *link) close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	cancel, done := l.cancel, l.done
	l.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

func (l *link) run(ctx context.Context) {
	defer close(l.done)
	l.opts.policy.Reset()

	for {
		conn, err := l.opts.dialer(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l.logWarn(ctx, "Connect attempt failed", err)
			if !l.waitRetry(ctx) {
				return
			}
			continue
		}

		l.opts.policy.Reset()
		l.attempts = 0

		err = l.serve(ctx, conn)
		if ctx.Err() != nil {
			return
		}
		l.logWarn(ctx, "Connection lost", err)
		l.emit(ctx, Event{Kind: EventError, Err: err})
		if !l.waitRetry(ctx) {
			return
		}
	}
}

// waitRetry espera el siguiente delay de la política. Retorna false si el
// transporte debe terminar (contexto cancelado o reintentos agotados).
func (l *link) waitRetry(ctx context.Context) bool {
	delay := l.opts.policy.NextBackOff()
	l.attempts++
	if delay == backoff.Stop {
		err := fmt.Errorf("%s: %w after %d attempts", l.opts.name, ErrRetriesExhausted, l.attempts-1)
		if l.opts.tel != nil {
			l.opts.tel.Error(ctx, "Reconnect attempts exhausted", err,
				semconv.Gateway.Transport.String(l.opts.name),
				semconv.Gateway.Attempt.Int(l.attempts),
			)
		}
		l.emit(ctx, Event{Kind: EventFatal, Err: err})
		return false
	}

	if l.opts.tel != nil {
		l.opts.tel.Info(ctx, "Reconnect scheduled",
			semconv.Gateway.Transport.String(l.opts.name),
			semconv.Gateway.Attempt.Int(l.attempts),
			attribute.String("delay", delay.String()),
		)
		l.opts.tel.GatewayMetrics().RecordReconnect(ctx, l.opts.name)
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (l *link) serve(ctx context.Context, conn net.Conn) error {
	l.mu.Lock()
	l.conn = conn
	l.connected = true
	l.queue = nil
	l.mu.Unlock()

	if l.opts.tel != nil {
		l.opts.tel.Info(ctx, "Transport connected",
			semconv.Gateway.Transport.String(l.opts.name),
			attribute.String("remote_addr", conn.RemoteAddr().String()),
		)
	}
	l.emit(ctx, Event{Kind: EventConnected})

	connCtx, stop := context.WithCancel(ctx)
	errCh := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		errCh <- l.readLoop(connCtx, conn)
	}()
	go func() {
		defer wg.Done()
		errCh <- l.writeLoop(connCtx, conn)
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		err = ctx.Err()
	}
	stop()
	_ = conn.Close()
	wg.Wait()

	l.mu.Lock()
	l.conn = nil
	l.connected = false
	l.queue = nil
	l.mu.Unlock()
	return err
}

func (l *link) readLoop(ctx context.Context, conn net.Conn) error {
	r := bufio.NewReader(conn)
	for {
		payload, err := l.read(r)
		if err != nil {
			return fmt.Errorf("%s read: %w", l.opts.name, err)
		}
		if payload == nil {
			continue
		}
		if !l.emit(ctx, Event{Kind: EventData, Data: payload}) {
			return ctx.Err()
		}
	}
}

// writeLoop es el único escritor de la conexión.
func (l *link) writeLoop(ctx context.Context, conn net.Conn) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
		for {
			item, ok := l.pop()
			if !ok {
				break
			}
			if err := l.write(conn, item); err != nil {
				return fmt.Errorf("%s write: %w", l.opts.name, err)
			}
		}
	}
}

func (l *link) pop() ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	item := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return item, true
}

func (l *link) emit(ctx context.Context, ev Event) bool {
	if ctx.Err() != nil {
		return false
	}
	ev.Transport = l.opts.name
	select {
	case l.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (l *link) logWarn(ctx context.Context, msg string, err error) {
	if l.opts.tel == nil {
		return
	}
	l.opts.tel.Warn(ctx, msg,
		semconv.Gateway.Transport.String(l.opts.name),
		semconv.Gateway.Attempt.Int(l.attempts+1),
		semconv.Gateway.Reason.String(errString(err)),
	)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
