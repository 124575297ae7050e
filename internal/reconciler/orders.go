package reconciler

import (
	"fmt"

	"github.com/xKoRx/hftgate/sdk/domain"
	"github.com/xKoRx/hftgate/sdk/openapi"
	"github.com/xKoRx/hftgate/sdk/telemetry/semconv"
)

// CreateMarketOrderEx envía una orden de mercado con el volumen legalizado.
//
// El volumen se trunca al múltiplo de step; fuera de [min, max] la orden se
// rechaza sin enviar nada. Retorna el volumen efectivamente enviado.
func (r *Reconciler) CreateMarketOrderEx(ticker string, side domain.TradeSide, volume int64, label string) (int64, error) {
	ticker = domain.NormalizeTicker(ticker)
	id, ok := r.tickerToID[ticker]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownInstrument, ticker)
	}
	info, ok := r.specs[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSpecMissing, ticker)
	}
	if side != domain.TradeSideLong && side != domain.TradeSideShort {
		return 0, domain.NewValidationError("side", side, "must be LONG or SHORT")
	}

	normalized, err := domain.NormalizeVolume(info, volume)
	if err != nil {
		r.logWarn("Order volume rejected",
			semconv.Gateway.Instrument.String(ticker),
			semconv.Gateway.Label.String(label),
			semconv.Gateway.Volume.Int64(volume),
			semconv.Gateway.Reason.String(err.Error()),
		)
		return 0, fmt.Errorf("%w: %w", ErrVolumeOutOfRange, err)
	}

	req := &openapi.NewOrderReq{
		CtidTraderAccountID: r.accountID,
		SymbolID:            id,
		OrderType:           openapi.OrderTypeMarket,
		TradeSide:           brokerSide(side),
		Volume:              normalized,
		Label:               label,
		ClientOrderID:       label,
	}
	msgID, err := r.send(req)
	if err != nil {
		return 0, fmt.Errorf("send new order: %w", err)
	}
	r.submitted[msgID] = pendingOrder{
		label:      label,
		instrument: ticker,
		side:       side,
		volume:     normalized,
	}

	r.logInfo("Market order sent",
		semconv.Gateway.Instrument.String(ticker),
		semconv.Gateway.Side.String(side.String()),
		semconv.Gateway.Volume.Int64(normalized),
		semconv.Gateway.Label.String(label),
	)
	return normalized, nil
}

// ClosePosition pide el cierre total de una posición viva.
func (r *Reconciler) ClosePosition(positionID int64) error {
	p, ok := r.positions[positionID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownPosition, positionID)
	}
	req := &openapi.ClosePositionReq{
		CtidTraderAccountID: r.accountID,
		PositionID:          p.PositionID,
		Volume:              p.Volume,
	}
	msgID, err := r.send(req)
	if err != nil {
		return fmt.Errorf("send close position: %w", err)
	}
	r.submitted[msgID] = pendingOrder{
		label:      p.Label,
		instrument: p.Instrument,
		side:       p.Side,
		volume:     p.Volume,
		positionID: p.PositionID,
		closing:    true,
	}
	r.logInfo("Close position sent", positionAttrs(*p)...)
	return nil
}

// ClosePositionByLabel cierra la posición que el engine abrió con label.
func (r *Reconciler) ClosePositionByLabel(label string) (domain.Position, error) {
	id, ok := r.byLabel[label]
	if !ok {
		return domain.Position{}, fmt.Errorf("%w: label %s", ErrUnknownPosition, label)
	}
	pos := *r.positions[id]
	return pos, r.ClosePosition(id)
}

// SubscribeInstrumentsEx suscribe spots para los tickers conocidos.
//
// Los tickers desconocidos se registran y se excluyen; el request se envía
// igual con los resueltos. Retorna los tickers incluidos.
func (r *Reconciler) SubscribeInstrumentsEx(tickers []string) ([]string, error) {
	ids := make([]int64, 0, len(tickers))
	resolved := make([]string, 0, len(tickers))
	for _, t := range tickers {
		ticker := domain.NormalizeTicker(t)
		id, ok := r.tickerToID[ticker]
		if !ok {
			r.logWarn("Subscription skipped for unknown instrument", semconv.Gateway.Instrument.String(t))
			continue
		}
		ids = append(ids, id)
		resolved = append(resolved, ticker)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: none of %v", ErrUnknownInstrument, tickers)
	}

	if _, err := r.send(openapi.NewSubscribeSpotsReq(r.accountID, ids)); err != nil {
		return nil, fmt.Errorf("send subscribe spots: %w", err)
	}
	r.logInfo("Spot subscription sent", semconv.Gateway.Instrument.StringSlice(resolved))
	return resolved, nil
}
