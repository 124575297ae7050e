package reconciler

import (
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xKoRx/hftgate/sdk/domain"
	"github.com/xKoRx/hftgate/sdk/openapi"
	"github.com/xKoRx/hftgate/sdk/telemetry/semconv"
	"github.com/xKoRx/hftgate/sdk/utils"
)

// HandleTraderUpdate aplica un TRADER_UPDATE_EVENT.
func (r *Reconciler) HandleTraderUpdate(ev *openapi.TraderUpdatedEvent) {
	r.ApplyTrader(ev.Trader)
}

// HandleSpot actualiza la caché de ticks.
//
// El broker omite el lado que no cambió; cada lado se sobreescribe sólo con
// valores positivos. OnTick se dispara recién cuando ambos lados son positivos.
func (r *Reconciler) HandleSpot(ev *openapi.SpotEvent) {
	ticker, ok := r.idToTicker[ev.SymbolID]
	if !ok {
		r.tel.Debug(r.ctx, "Spot for unindexed symbol ignored", attribute.Int64("symbol_id", ev.SymbolID))
		return
	}

	tick := r.ticks[ticker]
	if ev.Ask <= 0 && ev.Bid <= 0 && tick.Ready() {
		// Sin cotización nueva (p. ej. sólo trendbars) no hay tick que propagar.
		return
	}
	tick.Instrument = ticker
	if ev.Ask > 0 {
		tick.Ask = domain.ScalePrice(ev.Ask)
	}
	if ev.Bid > 0 {
		tick.Bid = domain.ScalePrice(ev.Bid)
	}
	if ev.Timestamp > 0 {
		tick.Timestamp = utils.UnixMilliToTime(ev.Timestamp)
	} else {
		tick.Timestamp = r.now().UTC()
	}
	r.ticks[ticker] = tick

	if !tick.Ready() {
		return
	}
	r.tel.GatewayMetrics().RecordTick(r.ctx, ticker)
	if r.listener != nil {
		r.listener.OnTick(tick)
	}
}

// HandleExecution enruta un EXECUTION_EVENT por tipo. clientMsgID es el del
// envelope recibido.
func (r *Reconciler) HandleExecution(ev *openapi.ExecutionEvent, clientMsgID string) {
	r.settle(clientMsgID, ev)

	switch ev.ExecutionType {
	case openapi.ExecutionOrderAccepted:
		r.trackOrder(ev)
	case openapi.ExecutionOrderFilled, openapi.ExecutionOrderPartialFill:
		r.handleOrderFill(ev)
	case openapi.ExecutionOrderRejected:
		r.handleOrderReject(ev)
	case openapi.ExecutionOrderCancelled, openapi.ExecutionOrderExpired:
		if ev.Order != nil {
			delete(r.orders, ev.Order.OrderID)
		}
		r.logInfo("Order finished without fill", attribute.String("execution_type", ev.ExecutionType.String()))
	default:
		r.tel.Debug(r.ctx, "Execution event ignored", attribute.String("execution_type", ev.ExecutionType.String()))
	}
}

// settle descarta la orden enviada a la que responde ev. Sin clientMsgId
// conocido se busca por label.
func (r *Reconciler) settle(clientMsgID string, ev *openapi.ExecutionEvent) {
	if _, ok := r.submitted[clientMsgID]; ok {
		delete(r.submitted, clientMsgID)
		return
	}
	if ev.Order == nil || ev.Order.TradeData.Label == "" {
		return
	}
	for id, o := range r.submitted {
		if o.label == ev.Order.TradeData.Label && o.closing == ev.Order.ClosingOrder {
			delete(r.submitted, id)
			return
		}
	}
}

// trackOrder recuerda las órdenes aceptadas para resolver ORDER_ERROR_EVENT.
func (r *Reconciler) trackOrder(ev *openapi.ExecutionEvent) {
	if ev.Order == nil {
		return
	}
	td := ev.Order.TradeData
	r.orders[ev.Order.OrderID] = pendingOrder{
		label:      td.Label,
		instrument: r.idToTicker[td.SymbolID],
		side:       sideOf(td.TradeSide),
		volume:     td.Volume,
		positionID: ev.Order.PositionID,
		closing:    ev.Order.ClosingOrder,
	}
}

// handleOrderFill aplica un fill. En un cierre, el balance del deal se aplica
// antes de disparar OnPositionClose.
func (r *Reconciler) handleOrderFill(ev *openapi.ExecutionEvent) {
	if ev.Order != nil {
		delete(r.orders, ev.Order.OrderID)
	}
	if ev.Position == nil {
		r.logWarn("Fill without position payload")
		return
	}

	if ev.Position.PositionStatus != openapi.PositionStatusClosed {
		pos, ok := r.ArrangePosition(ev.Position, false)
		if ok {
			r.logInfo("Position filled", positionAttrs(pos)...)
			r.tel.GatewayMetrics().RecordPositionEvent(r.ctx, "open", pos.Instrument)
		}
		return
	}

	var detail *openapi.ClosePositionDetail
	if ev.Deal != nil {
		detail = ev.Deal.ClosePositionDetail
	}
	if detail != nil {
		r.account.Balance = domain.ScaleMoney(detail.Balance, closeDigits(ev.Deal, detail))
	}

	removed, _ := r.ArrangePosition(ev.Position, false)
	info := r.closedInfo(removed, ev.Deal, detail)

	r.logInfo("Position closed", append(positionAttrs(removed),
		attribute.String("balance", info.Balance.String()),
		semconv.Gateway.Price.String(info.ClosePrice.String()),
	)...)
	r.tel.GatewayMetrics().RecordPositionEvent(r.ctx, "close", removed.Instrument)
	if r.listener != nil {
		r.listener.OnPositionClose(info)
	}
}

func closeDigits(deal *openapi.Deal, detail *openapi.ClosePositionDetail) uint32 {
	if detail.MoneyDigits != 0 {
		return detail.MoneyDigits
	}
	return deal.MoneyDigits
}

func (r *Reconciler) closedInfo(pos domain.Position, deal *openapi.Deal, detail *openapi.ClosePositionDetail) domain.ClosedPositionInfo {
	info := domain.ClosedPositionInfo{
		PositionID: pos.PositionID,
		Label:      pos.Label,
		Instrument: pos.Instrument,
		Side:       pos.Side,
		Volume:     pos.Volume,
		EntryPrice: pos.ExecutionPrice,
		Balance:    r.account.Balance,
		Timestamp:  r.now().UnixMilli(),
	}
	if deal != nil {
		info.ClosePrice = decimal.NewFromFloat(deal.ExecutionPrice)
		if deal.ExecutionTimestamp > 0 {
			info.Timestamp = deal.ExecutionTimestamp
		}
		if deal.Volume > 0 {
			info.Volume = deal.Volume
		}
	}
	if detail != nil {
		info.EntryPrice = decimal.NewFromFloat(detail.EntryPrice)
		info.GrossProfit = domain.ScaleMoney(detail.GrossProfit, closeDigits(deal, detail))
	}
	return info
}

// handleOrderReject interpreta un rechazo según el estado de la posición:
// CLOSED indica una apertura fallida y OPEN un cierre fallido.
func (r *Reconciler) handleOrderReject(ev *openapi.ExecutionEvent) {
	if ev.Order != nil {
		delete(r.orders, ev.Order.OrderID)
	}
	if ev.ErrorCode == "" || ev.Position == nil {
		r.logWarn("Order rejected without error code or position",
			semconv.Gateway.ErrorCode.String(ev.ErrorCode),
		)
		return
	}

	info := r.orderErrorInfo(ev)
	switch ev.Position.PositionStatus {
	case openapi.PositionStatusClosed:
		r.logWarn("Position open rejected", semconv.Gateway.Label.String(info.Label), semconv.Gateway.ErrorCode.String(info.ErrorCode))
		r.tel.GatewayMetrics().RecordPositionEvent(r.ctx, "open_error", info.Instrument)
		if r.listener != nil {
			r.listener.OnPositionOpenError(info)
		}
	case openapi.PositionStatusOpen:
		r.logWarn("Position close rejected", semconv.Gateway.Label.String(info.Label), semconv.Gateway.ErrorCode.String(info.ErrorCode))
		r.tel.GatewayMetrics().RecordPositionEvent(r.ctx, "close_error", info.Instrument)
		if r.listener != nil {
			r.listener.OnPositionCloseError(info)
		}
	default:
		r.logWarn("Order rejected with ambiguous position status",
			semconv.Gateway.PositionID.Int64(info.PositionID),
			semconv.Gateway.Status.Int(int(ev.Position.PositionStatus)),
			semconv.Gateway.ErrorCode.String(info.ErrorCode),
		)
	}
}

func (r *Reconciler) orderErrorInfo(ev *openapi.ExecutionEvent) domain.OrderErrorInfo {
	td := ev.Position.TradeData
	info := domain.OrderErrorInfo{
		PositionID: ev.Position.PositionID,
		Label:      td.Label,
		Instrument: r.idToTicker[td.SymbolID],
		Side:       sideOf(td.TradeSide),
		Volume:     td.Volume,
		ErrorCode:  ev.ErrorCode,
	}
	if ev.Order != nil {
		info.OrderID = ev.Order.OrderID
		if info.Label == "" {
			info.Label = ev.Order.TradeData.Label
		}
	}
	return info
}

// HandleOrderError resuelve un ORDER_ERROR_EVENT, en orden: por la orden
// aceptada (orderId), por la request enviada (clientMsgId del envelope) o por
// la tabla de posiciones. Sin contexto suficiente sólo se registra.
//
// El broker puede rechazar una orden antes de aceptarla; en ese caso sólo
// el clientMsgId la identifica.
func (r *Reconciler) HandleOrderError(ev *openapi.OrderErrorEvent, clientMsgID string) {
	info := domain.OrderErrorInfo{
		PositionID:  ev.PositionID,
		OrderID:     ev.OrderID,
		ErrorCode:   ev.ErrorCode,
		Description: ev.Description,
	}

	if order, ok := r.orders[ev.OrderID]; ok && ev.OrderID != 0 {
		delete(r.orders, ev.OrderID)
		r.fireOrderError(info, order)
		return
	}

	if order, ok := r.submitted[clientMsgID]; ok {
		delete(r.submitted, clientMsgID)
		r.fireOrderError(info, order)
		return
	}

	if pos, ok := r.positions[ev.PositionID]; ok && ev.PositionID != 0 {
		info.Label = pos.Label
		info.Instrument = pos.Instrument
		info.Side = pos.Side
		info.Volume = pos.Volume
		r.fireCloseError(info)
		return
	}

	r.logWarn("Order error without known order or position",
		semconv.Gateway.OrderID.Int64(ev.OrderID),
		semconv.Gateway.PositionID.Int64(ev.PositionID),
		semconv.Gateway.ErrorCode.String(ev.ErrorCode),
		semconv.Gateway.Reason.String(ev.Description),
	)
}

func (r *Reconciler) fireOrderError(info domain.OrderErrorInfo, order pendingOrder) {
	info.Label = order.label
	info.Instrument = order.instrument
	info.Side = order.side
	info.Volume = order.volume
	if info.PositionID == 0 {
		info.PositionID = order.positionID
	}
	if order.closing {
		r.fireCloseError(info)
	} else {
		r.fireOpenError(info)
	}
}

func (r *Reconciler) fireOpenError(info domain.OrderErrorInfo) {
	r.logWarn("Order error on open", semconv.Gateway.Label.String(info.Label), semconv.Gateway.ErrorCode.String(info.String()))
	r.tel.GatewayMetrics().RecordPositionEvent(r.ctx, "open_error", info.Instrument)
	if r.listener != nil {
		r.listener.OnPositionOpenError(info)
	}
}

func (r *Reconciler) fireCloseError(info domain.OrderErrorInfo) {
	r.logWarn("Order error on close", semconv.Gateway.Label.String(info.Label), semconv.Gateway.ErrorCode.String(info.String()))
	r.tel.GatewayMetrics().RecordPositionEvent(r.ctx, "close_error", info.Instrument)
	if r.listener != nil {
		r.listener.OnPositionCloseError(info)
	}
}

// HandleError registra un error del broker recibido en OPERATIONAL.
func (r *Reconciler) HandleError(code, description string) {
	r.logError("Broker error response", domain.NewError(domain.ErrOrderRejected, code+": "+description),
		semconv.Gateway.ErrorCode.String(code),
	)
}
