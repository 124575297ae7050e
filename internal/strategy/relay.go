package strategy

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xKoRx/hftgate/sdk/domain"
	"github.com/xKoRx/hftgate/sdk/engineproto"
	"github.com/xKoRx/hftgate/sdk/telemetry"
	"github.com/xKoRx/hftgate/sdk/telemetry/semconv"
	"github.com/xKoRx/hftgate/sdk/utils"
)

// Relay conecta el engine con el broker.
//
// Al conectar el engine envía init; con el broker OPERATIONAL envía un sync
// por cada posición con label. Reenvía cada tick con equity y free margin,
// ejecuta los advices y responde los fills con open_notify/close_notify.
type Relay struct {
	deps Deps
	tel  *telemetry.Client
	ctx  context.Context
	name string

	engineUp    bool
	brokerReady bool
}

// NewRelay crea la variante relay.
func NewRelay(deps Deps) *Relay {
	return newRelay(deps, VariantRelay)
}

func newRelay(deps Deps, name string) *Relay {
	return &Relay{
		deps: deps,
		tel:  deps.Telemetry,
		ctx:  telemetry.AppendCommonAttrs(context.Background(), semconv.Gateway.Component.String(name)),
		name: name,
	}
}

func (r *Relay) Name() string { return r.name }

// OnBootstrapComplete marca el broker como listo y sincroniza al engine.
func (r *Relay) OnBootstrapComplete() {
	r.brokerReady = true
	r.logInfo("Broker operational", attribute.Bool("engine_connected", r.engineUp))
	if r.engineUp {
		r.syncPositions()
	}
}

func (r *Relay) OnBrokerLost() {
	r.brokerReady = false
}

// OnEngineConnected abre la sesión con init y, si el broker está listo, sincroniza.
func (r *Relay) OnEngineConnected() {
	r.engineUp = true
	r.send(engineproto.Init{SessID: r.deps.SessionID, Instruments: r.deps.Instruments})
	if r.brokerReady {
		r.syncPositions()
	}
}

func (r *Relay) OnEngineLost() {
	r.engineUp = false
}

func (r *Relay) syncPositions() {
	if r.deps.Broker == nil {
		return
	}
	owned := r.deps.Broker.OwnedPositions()
	for _, p := range owned {
		r.send(engineproto.Sync{
			Instrument: p.Instrument,
			ID:         p.Label,
			Timestamp:  utils.UnixMilliToTime(p.OpenTimestamp),
			Direction:  p.Side,
			Price:      p.ExecutionPrice.InexactFloat64(),
			Qty:        p.Volume,
		})
		if r.deps.Ledger != nil {
			if err := r.deps.Ledger.MarkOpen(p.Label, p.PositionID, p.ExecutionPrice); err != nil {
				r.logError("Ledger update failed", err, semconv.Gateway.Label.String(p.Label))
			}
		}
	}
	r.logInfo("Engine synchronized", attribute.Int("positions", len(owned)))
}

// OnTick reenvía la cotización con el estado de la cuenta calculado en el momento.
func (r *Relay) OnTick(tick domain.Tick) {
	if !r.engineUp {
		return
	}
	req := engineproto.Tick{
		Instrument: tick.Instrument,
		Timestamp:  tick.Timestamp,
		Ask:        tick.Ask.InexactFloat64(),
		Bid:        tick.Bid.InexactFloat64(),
	}
	if r.deps.Broker != nil {
		req.Equity = r.deps.Broker.Equity().InexactFloat64()
		req.FreeMargin = r.deps.Broker.FreeMargin().InexactFloat64()
	}
	r.send(req)
}

func (r *Relay) OnPositionOpen(pos domain.Position) {
	if !pos.Owned() {
		r.logInfo("Foreign position opened", positionAttrs(pos.PositionID, pos.Label, pos.Instrument)...)
		return
	}
	if r.deps.Ledger != nil {
		if err := r.deps.Ledger.MarkOpen(pos.Label, pos.PositionID, pos.ExecutionPrice); err != nil {
			r.logError("Ledger update failed", err, semconv.Gateway.Label.String(pos.Label))
		}
	}
	r.notifyOpen(pos.Instrument, pos.Label, engineproto.NotifyOK, pos.ExecutionPrice)
}

func (r *Relay) OnPositionOpenError(info domain.OrderErrorInfo) {
	if info.Label == "" {
		r.logWarn("Open error without label", semconv.Gateway.ErrorCode.String(info.String()))
		return
	}
	r.markFailed(info.Label, info.String())
	r.notifyOpen(info.Instrument, info.Label, engineproto.NotifyError, decimal.Zero)
}

func (r *Relay) OnPositionClose(info domain.ClosedPositionInfo) {
	if info.Label == "" {
		r.logInfo("Foreign position closed", positionAttrs(info.PositionID, info.Label, info.Instrument)...)
		return
	}
	if r.deps.Ledger != nil {
		if err := r.deps.Ledger.MarkClosed(info.Label, info.ClosePrice); err != nil {
			r.logError("Ledger update failed", err, semconv.Gateway.Label.String(info.Label))
		}
	}
	r.notifyClose(info.Instrument, info.Label, engineproto.NotifyOK, info.ClosePrice)
}

func (r *Relay) OnPositionCloseError(info domain.OrderErrorInfo) {
	if info.Label == "" {
		r.logWarn("Close error without label", semconv.Gateway.ErrorCode.String(info.String()))
		return
	}
	r.notifyClose(info.Instrument, info.Label, engineproto.NotifyError, decimal.Zero)
}

// OnEngineAdvice ejecuta cada operación en orden.
//
// Con el broker fuera de OPERATIONAL ninguna operación se encola: cada una
// recibe su notificación de error.
func (r *Relay) OnEngineAdvice(resp engineproto.Response, brokerReady bool) {
	switch resp.Status {
	case engineproto.StatusAck:
		r.tel.Debug(r.ctx, "Engine ack")
		return
	case engineproto.StatusError:
		r.logWarn("Engine reported error", semconv.Gateway.Reason.String(resp.Message))
		return
	}

	for _, op := range resp.Operations {
		if !brokerReady {
			r.refuse(resp.Instrument, op, "broker not ready")
			continue
		}
		if op.IsClose() {
			r.executeClose(resp.Instrument, op)
		} else {
			r.executeOpen(resp.Instrument, op)
		}
	}
}

func (r *Relay) executeOpen(instrument string, op engineproto.Operation) {
	side := op.Side()
	if r.deps.Ledger != nil {
		if err := r.deps.Ledger.Reserve(op.ID, instrument, side, op.Qty); err != nil {
			r.logWarn("Open advice refused",
				semconv.Gateway.Label.String(op.ID),
				semconv.Gateway.Reason.String(err.Error()),
			)
			r.tel.GatewayMetrics().RecordAdviceOperation(r.ctx, op.Op, semconv.StatusValues.Rejected)
			r.notifyOpen(instrument, op.ID, engineproto.NotifyError, decimal.Zero)
			return
		}
	}

	volume, err := r.deps.Broker.CreateMarketOrderEx(instrument, side, op.Qty, op.ID)
	if err != nil {
		r.logError("Open advice failed", err,
			semconv.Gateway.Label.String(op.ID),
			semconv.Gateway.Instrument.String(instrument),
			semconv.Gateway.Volume.Int64(op.Qty),
		)
		r.markFailed(op.ID, err.Error())
		r.tel.GatewayMetrics().RecordAdviceOperation(r.ctx, op.Op, semconv.StatusValues.Error)
		r.notifyOpen(instrument, op.ID, engineproto.NotifyError, decimal.Zero)
		return
	}
	r.tel.GatewayMetrics().RecordAdviceOperation(r.ctx, op.Op, semconv.StatusValues.OK)
	r.logInfo("Open advice executed",
		semconv.Gateway.Label.String(op.ID),
		semconv.Gateway.Side.String(side.String()),
		semconv.Gateway.Volume.Int64(volume),
	)
}

func (r *Relay) executeClose(instrument string, op engineproto.Operation) {
	pos, err := r.deps.Broker.ClosePositionByLabel(op.ID)
	if err != nil {
		r.logError("Close advice failed", err, semconv.Gateway.Label.String(op.ID))
		r.tel.GatewayMetrics().RecordAdviceOperation(r.ctx, op.Op, semconv.StatusValues.Error)
		r.notifyClose(instrument, op.ID, engineproto.NotifyError, decimal.Zero)
		return
	}
	r.tel.GatewayMetrics().RecordAdviceOperation(r.ctx, op.Op, semconv.StatusValues.OK)
	r.logInfo("Close advice executed", positionAttrs(pos.PositionID, pos.Label, pos.Instrument)...)
}

func (r *Relay) refuse(instrument string, op engineproto.Operation, reason string) {
	r.logWarn("Advice operation refused",
		semconv.Gateway.Operation.String(op.Op),
		semconv.Gateway.Label.String(op.ID),
		semconv.Gateway.Reason.String(reason),
	)
	r.tel.GatewayMetrics().RecordAdviceOperation(r.ctx, op.Op, semconv.StatusValues.Rejected)
	if op.IsClose() {
		r.notifyClose(instrument, op.ID, engineproto.NotifyError, decimal.Zero)
	} else {
		r.notifyOpen(instrument, op.ID, engineproto.NotifyError, decimal.Zero)
	}
}

func (r *Relay) markFailed(label, reason string) {
	if r.deps.Ledger == nil {
		return
	}
	if err := r.deps.Ledger.MarkFailed(label, reason); err != nil {
		r.logError("Ledger update failed", err, semconv.Gateway.Label.String(label))
	}
}

func (r *Relay) notifyOpen(instrument, label, status string, price decimal.Decimal) {
	r.send(engineproto.OpenNotify{Notification: engineproto.Notification{
		Instrument: instrument,
		ID:         label,
		Status:     status,
		Price:      price.InexactFloat64(),
	}})
}

func (r *Relay) notifyClose(instrument, label, status string, price decimal.Decimal) {
	r.send(engineproto.CloseNotify{Notification: engineproto.Notification{
		Instrument: instrument,
		ID:         label,
		Status:     status,
		Price:      price.InexactFloat64(),
	}})
}

// send descarta el request si el engine no está conectado; el sync posterior
// a la reconexión restablece el estado.
func (r *Relay) send(req engineproto.Request) {
	if r.deps.Engine == nil {
		return
	}
	if err := r.deps.Engine.SendEngine(req); err != nil {
		r.logWarn("Engine request dropped",
			attribute.String("method", req.Method()),
			semconv.Gateway.Reason.String(err.Error()),
		)
	}
}

func (r *Relay) logInfo(msg string, attrs ...attribute.KeyValue) {
	r.tel.Info(r.ctx, msg, attrs...)
}

func (r *Relay) logWarn(msg string, attrs ...attribute.KeyValue) {
	r.tel.Warn(r.ctx, msg, attrs...)
}

func (r *Relay) logError(msg string, err error, attrs ...attribute.KeyValue) {
	r.tel.Error(r.ctx, msg, err, attrs...)
}

func positionAttrs(positionID int64, label, instrument string) []attribute.KeyValue {
	return semconv.PositionAttributes(positionID, label, instrument)
}
