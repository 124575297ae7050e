// Package reconciler mantiene el estado autoritativo de la cuenta: tabla de
// posiciones, balance, índices ticker↔id, especificaciones de volumen y la
// caché de ticks.
//
// Un Reconciler lo usa una única goroutine (el event loop del gateway); no
// tiene locks.
package reconciler

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xKoRx/hftgate/sdk/domain"
	"github.com/xKoRx/hftgate/sdk/openapi"
	"github.com/xKoRx/hftgate/sdk/telemetry"
	"github.com/xKoRx/hftgate/sdk/telemetry/semconv"
	"github.com/xKoRx/hftgate/sdk/utils"
)

var (
	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrSpecMissing       = errors.New("instrument volume spec missing")
	ErrVolumeOutOfRange  = errors.New("volume out of range")
	ErrUnknownPosition   = errors.New("unknown position")
)

// Sender entrega mensajes al broker con el clientMsgId indicado.
//
// El broker repite ese clientMsgId en las respuestas y eventos de la request.
type Sender interface {
	SendBroker(msg openapi.Message, clientMsgID string) error
}

// Listener recibe los eventos de dominio que produce el reconciler.
type Listener interface {
	OnTick(tick domain.Tick)
	OnPositionOpen(pos domain.Position)
	OnPositionOpenError(info domain.OrderErrorInfo)
	OnPositionClose(info domain.ClosedPositionInfo)
	OnPositionCloseError(info domain.OrderErrorInfo)
}

// pendingOrder es una orden en vuelo: enviada sin respuesta (por clientMsgId)
// o aceptada y todavía sin fill (por orderId).
type pendingOrder struct {
	label      string
	instrument string
	side       domain.TradeSide
	volume     int64
	positionID int64
	closing    bool
}

// Reconciler es dueño exclusivo de posiciones, cuenta, índices y ticks.
type Reconciler struct {
	accountID int64
	sender    Sender
	listener  Listener
	tel       *telemetry.Client
	ctx       context.Context
	now       func() time.Time

	account    domain.Account
	positions  map[int64]*domain.Position
	byLabel    map[string]int64
	tickerToID map[string]int64
	idToTicker map[int64]string
	specs      map[int64]domain.InstrumentInfo
	ticks      map[string]domain.Tick
	orders     map[int64]pendingOrder
	submitted  map[string]pendingOrder
}

// Option configura un Reconciler.
type Option func(*Reconciler)

// WithTelemetry habilita logs y métricas.
func WithTelemetry(tel *telemetry.Client) Option {
	return func(r *Reconciler) { r.tel = tel }
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// New crea un Reconciler para la cuenta indicada.
//
// listener puede asignarse después con SetListener.
func New(accountID int64, sender Sender, listener Listener, opts ...Option) *Reconciler {
	r := &Reconciler{
		accountID:  accountID,
		sender:     sender,
		listener:   listener,
		ctx:        telemetry.AppendCommonAttrs(context.Background(), semconv.Gateway.Component.String("reconciler")),
		now:        time.Now,
		account:    domain.Account{AccountID: accountID},
		positions:  make(map[int64]*domain.Position),
		byLabel:    make(map[string]int64),
		tickerToID: make(map[string]int64),
		idToTicker: make(map[int64]string),
		specs:      make(map[int64]domain.InstrumentInfo),
		ticks:      make(map[string]domain.Tick),
		orders:     make(map[int64]pendingOrder),
		submitted:  make(map[string]pendingOrder),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetListener reemplaza el destinatario de los callbacks.
func (r *Reconciler) SetListener(l Listener) { r.listener = l }

// AccountID retorna el ctidTraderAccountId de la sesión.
func (r *Reconciler) AccountID() int64 { return r.accountID }

// Account retorna una copia del estado de la cuenta.
func (r *Reconciler) Account() domain.Account { return r.account }

// Position busca una posición viva por id.
func (r *Reconciler) Position(positionID int64) (domain.Position, bool) {
	p, ok := r.positions[positionID]
	if !ok {
		return domain.Position{}, false
	}
	return *p, true
}

// PositionByLabel busca una posición viva por el label asignado por el engine.
func (r *Reconciler) PositionByLabel(label string) (domain.Position, bool) {
	id, ok := r.byLabel[label]
	if !ok {
		return domain.Position{}, false
	}
	return r.Position(id)
}

// Positions retorna las posiciones vivas ordenadas por id.
func (r *Reconciler) Positions() []domain.Position {
	out := make([]domain.Position, 0, len(r.positions))
	for _, p := range r.positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PositionID < out[j].PositionID })
	return out
}

// OwnedPositions retorna sólo las posiciones con label.
func (r *Reconciler) OwnedPositions() []domain.Position {
	all := r.Positions()
	out := all[:0]
	for _, p := range all {
		if p.Owned() {
			out = append(out, p)
		}
	}
	return out
}

// Tick retorna la última cotización conocida del ticker.
func (r *Reconciler) Tick(ticker string) (domain.Tick, bool) {
	t, ok := r.ticks[domain.NormalizeTicker(ticker)]
	return t, ok
}

// InstrumentID resuelve un ticker con el índice construido en el bootstrap.
func (r *Reconciler) InstrumentID(ticker string) (int64, bool) {
	id, ok := r.tickerToID[domain.NormalizeTicker(ticker)]
	return id, ok
}

// Ticker resuelve un id de símbolo.
func (r *Reconciler) Ticker(instrumentID int64) (string, bool) {
	t, ok := r.idToTicker[instrumentID]
	return t, ok
}

// InstrumentInfo retorna la especificación de volumen de un ticker.
func (r *Reconciler) InstrumentInfo(ticker string) (domain.InstrumentInfo, bool) {
	id, ok := r.InstrumentID(ticker)
	if !ok {
		return domain.InstrumentInfo{}, false
	}
	info, ok := r.specs[id]
	return info, ok
}

// send envía msg con un clientMsgId nuevo y lo retorna.
func (r *Reconciler) send(msg openapi.Message) (string, error) {
	if r.sender == nil {
		return "", errors.New("broker sender not configured")
	}
	id := utils.NewClientMsgID()
	return id, r.sender.SendBroker(msg, id)
}

func (r *Reconciler) logInfo(msg string, attrs ...attribute.KeyValue) {
	r.tel.Info(r.ctx, msg, attrs...)
}

func (r *Reconciler) logWarn(msg string, attrs ...attribute.KeyValue) {
	r.tel.Warn(r.ctx, msg, attrs...)
}

func (r *Reconciler) logError(msg string, err error, attrs ...attribute.KeyValue) {
	r.tel.Error(r.ctx, msg, err, attrs...)
}

func positionAttrs(p domain.Position) []attribute.KeyValue {
	return []attribute.KeyValue{
		semconv.Gateway.PositionID.Int64(p.PositionID),
		semconv.Gateway.Label.String(p.Label),
		semconv.Gateway.Instrument.String(p.Instrument),
		semconv.Gateway.Side.String(p.Side.String()),
		semconv.Gateway.Volume.Int64(p.Volume),
	}
}
