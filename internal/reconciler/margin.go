package reconciler

import (
	"github.com/shopspring/decimal"

	"github.com/xKoRx/hftgate/sdk/domain"
)

var two = decimal.NewFromInt(2)

// FreeMargin calcula el margen libre con los últimos ticks. Nunca se cachea.
//
//	balance − Σ used_margin + Σ (execution_price − current_price) × volume × sign + 2×commission + swap
//
// current_price es el bid para LONG y el ask para SHORT. Sin tick listo se
// usa el precio de ejecución.
func (r *Reconciler) FreeMargin() decimal.Decimal {
	used := decimal.Zero
	for _, p := range r.positions {
		used = used.Add(p.UsedMargin)
	}
	return r.Equity().Sub(used)
}

// Equity es FreeMargin sin descontar el margen usado.
func (r *Reconciler) Equity() decimal.Decimal {
	total := r.account.Balance
	for _, p := range r.positions {
		total = total.Add(r.positionResult(p))
	}
	return total
}

func (r *Reconciler) positionResult(p *domain.Position) decimal.Decimal {
	current := r.currentPrice(p)
	diff := p.ExecutionPrice.Sub(current).
		Mul(decimal.NewFromInt(p.Volume)).
		Mul(p.Side.Sign())
	return diff.Add(p.Commission.Mul(two)).Add(p.Swap)
}

func (r *Reconciler) currentPrice(p *domain.Position) decimal.Decimal {
	tick, ok := r.ticks[p.Instrument]
	if !ok || !tick.Ready() {
		return p.ExecutionPrice
	}
	if p.Side == domain.TradeSideShort {
		return tick.Ask
	}
	return tick.Bid
}
