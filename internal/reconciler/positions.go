package reconciler

import (
	"github.com/shopspring/decimal"

	"github.com/xKoRx/hftgate/sdk/domain"
	"github.com/xKoRx/hftgate/sdk/openapi"
	"github.com/xKoRx/hftgate/sdk/telemetry/semconv"
)

// ArrangePosition aplica el estado reportado por el broker a la tabla.
//
//	OPEN            → upsert; OnPositionOpen si no es histórico y la posición es nueva
//	CLOSED          → se elimina de la tabla
//	CREATED / ERROR → sin efecto
//
// Retorna la posición resultante (OPEN) o la eliminada (CLOSED).
func (r *Reconciler) ArrangePosition(raw *openapi.Position, historical bool) (domain.Position, bool) {
	if raw == nil {
		return domain.Position{}, false
	}

	switch raw.PositionStatus {
	case openapi.PositionStatusOpen:
		pos := r.toDomain(raw)
		_, existed := r.positions[pos.PositionID]
		r.upsert(pos)
		if !historical && !existed && r.listener != nil {
			r.listener.OnPositionOpen(pos)
		}
		return pos, true

	case openapi.PositionStatusClosed:
		removed, ok := r.remove(raw.PositionID)
		if !ok {
			return r.toDomain(raw), false
		}
		return removed, true

	default:
		r.tel.Debug(r.ctx, "Position status ignored",
			semconv.Gateway.PositionID.Int64(raw.PositionID),
			semconv.Gateway.Status.Int(int(raw.PositionStatus)),
		)
		return domain.Position{}, false
	}
}

func (r *Reconciler) upsert(pos domain.Position) {
	if prev, ok := r.positions[pos.PositionID]; ok && prev.Label != pos.Label {
		delete(r.byLabel, prev.Label)
	}
	p := pos
	r.positions[pos.PositionID] = &p
	if pos.Label != "" {
		r.byLabel[pos.Label] = pos.PositionID
	}
}

func (r *Reconciler) remove(positionID int64) (domain.Position, bool) {
	p, ok := r.positions[positionID]
	if !ok {
		return domain.Position{}, false
	}
	delete(r.positions, positionID)
	if p.Label != "" && r.byLabel[p.Label] == positionID {
		delete(r.byLabel, p.Label)
	}
	return *p, true
}

// toDomain escala los montos con el moneyDigits del propio mensaje.
func (r *Reconciler) toDomain(raw *openapi.Position) domain.Position {
	td := raw.TradeData
	return domain.Position{
		PositionID:     raw.PositionID,
		Label:          td.Label,
		InstrumentID:   td.SymbolID,
		Instrument:     r.idToTicker[td.SymbolID],
		Side:           sideOf(td.TradeSide),
		Volume:         td.Volume,
		OpenTimestamp:  td.OpenTimestamp,
		ExecutionPrice: decimal.NewFromFloat(raw.Price),
		UsedMargin:     domain.ScaleMoney(int64(raw.UsedMargin), raw.MoneyDigits),
		Swap:           domain.ScaleMoney(raw.Swap, raw.MoneyDigits),
		Commission:     domain.ScaleMoney(raw.Commission, raw.MoneyDigits),
	}
}

func sideOf(s openapi.TradeSide) domain.TradeSide {
	switch s {
	case openapi.TradeSideBuy:
		return domain.TradeSideLong
	case openapi.TradeSideSell:
		return domain.TradeSideShort
	default:
		return domain.TradeSideUnspecified
	}
}

func brokerSide(s domain.TradeSide) openapi.TradeSide {
	if s == domain.TradeSideShort {
		return openapi.TradeSideSell
	}
	return openapi.TradeSideBuy
}
