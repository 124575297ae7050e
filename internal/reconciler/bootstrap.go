package reconciler

import (
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xKoRx/hftgate/sdk/domain"
	"github.com/xKoRx/hftgate/sdk/openapi"
	"github.com/xKoRx/hftgate/sdk/telemetry/semconv"
)

// ApplyTrader reemplaza el estado de la cuenta con la respuesta del broker.
func (r *Reconciler) ApplyTrader(t openapi.Trader) {
	r.account = domain.Account{
		AccountID:             r.accountID,
		Balance:               domain.ScaleMoney(t.Balance, t.MoneyDigits),
		BrokerName:            t.BrokerName,
		Leverage:              decimal.New(int64(t.LeverageInCents), -2),
		RegistrationTimestamp: t.RegistrationTimestamp,
		MoneyDigits:           t.MoneyDigits,
	}
	r.logInfo("Account state applied",
		semconv.Gateway.AccountID.Int64(r.accountID),
		attribute.String("balance", r.account.Balance.String()),
		attribute.String("broker", t.BrokerName),
	)
}

// IndexSymbols construye los índices ticker↔id con los símbolos habilitados.
//
// Los mapas nuevos se arman completos y recién entonces reemplazan a los
// anteriores.
func (r *Reconciler) IndexSymbols(symbols []openapi.LightSymbol) {
	toID := make(map[string]int64, len(symbols))
	toTicker := make(map[int64]string, len(symbols))
	for _, s := range symbols {
		if !s.Enabled {
			continue
		}
		ticker := domain.NormalizeTicker(s.SymbolName)
		if ticker == "" {
			continue
		}
		toID[ticker] = s.SymbolID
		toTicker[s.SymbolID] = ticker
	}
	r.tickerToID = toID
	r.idToTicker = toTicker

	r.logInfo("Symbol index built",
		attribute.Int("received", len(symbols)),
		attribute.Int("indexed", len(toID)),
	)
}

// SymbolIDs resuelve los tickers indicados; los desconocidos se registran y se omiten.
func (r *Reconciler) SymbolIDs(tickers []string) []int64 {
	ids := make([]int64, 0, len(tickers))
	for _, t := range tickers {
		id, ok := r.InstrumentID(t)
		if !ok {
			r.logWarn("Unknown instrument ignored", semconv.Gateway.Instrument.String(t))
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// ApplySymbolSpecs registra min/max/step de cada símbolo recibido.
func (r *Reconciler) ApplySymbolSpecs(symbols []openapi.Symbol) {
	for _, s := range symbols {
		ticker := r.idToTicker[s.SymbolID]
		r.specs[s.SymbolID] = domain.InstrumentInfo{
			InstrumentID: s.SymbolID,
			Ticker:       ticker,
			MinVolume:    s.MinVolume,
			MaxVolume:    s.MaxVolume,
			StepVolume:   s.StepVolume,
		}
		r.logInfo("Instrument spec applied",
			semconv.Gateway.Instrument.String(ticker),
			attribute.Int64("min_volume", s.MinVolume),
			attribute.Int64("max_volume", s.MaxVolume),
			attribute.Int64("step_volume", s.StepVolume),
		)
	}
}

// SeedPositions reemplaza la tabla con el snapshot histórico del broker.
//
// No dispara OnPositionOpen.
func (r *Reconciler) SeedPositions(positions []openapi.Position) {
	r.positions = make(map[int64]*domain.Position, len(positions))
	r.byLabel = make(map[string]int64)
	r.orders = make(map[int64]pendingOrder)
	for i := range positions {
		r.ArrangePosition(&positions[i], true)
	}
	r.logInfo("Positions seeded", attribute.Int("positions", len(r.positions)))
}
