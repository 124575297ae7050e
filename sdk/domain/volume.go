package domain

import (
	"github.com/shopspring/decimal"
)

// priceExponent es la escala fija de los precios de spot del broker (1/100000).
const priceExponent = -5

// ScaleMoney divide un monto entero del broker por 10^moneyDigits.
//
// El exponente es por mensaje; moneyDigits=0 (ausente) equivale a divisor 1.
//
// Example:
//
//	domain.ScaleMoney(10053099944, 8) // => 100.53099944
func ScaleMoney(raw int64, moneyDigits uint32) decimal.Decimal {
	return decimal.New(raw, -int32(moneyDigits))
}

// ScalePrice convierte un precio de spot en unidades enteras a decimal.
func ScalePrice(raw uint64) decimal.Decimal {
	return decimal.New(int64(raw), priceExponent)
}

// NormalizeVolume trunca el volumen solicitado al múltiplo inferior de step
// y lo rechaza si queda fuera de [min, max].
//
// A diferencia de un clamp, nunca ajusta hacia arriba ni hacia el máximo:
// un volumen fuera de rango no produce orden.
func NormalizeVolume(info InstrumentInfo, requested int64) (int64, error) {
	if info.StepVolume <= 0 {
		return 0, NewValidationError("step_volume", info.StepVolume, "step_volume must be > 0")
	}
	if info.MinVolume > info.MaxVolume {
		return 0, NewValidationError("min_volume", info.MinVolume, "min_volume cannot exceed max_volume")
	}
	if requested <= 0 {
		return 0, NewError(ErrInvalidVolume, "requested volume must be positive").
			WithDetail("requested", requested)
	}

	truncated := requested - requested%info.StepVolume
	if truncated < info.MinVolume {
		return 0, NewError(ErrInvalidVolume, "volume below minimum").
			WithDetail("requested", requested).
			WithDetail("truncated", truncated).
			WithDetail("min_volume", info.MinVolume)
	}
	if truncated > info.MaxVolume {
		return 0, NewError(ErrInvalidVolume, "volume above maximum").
			WithDetail("requested", requested).
			WithDetail("truncated", truncated).
			WithDetail("max_volume", info.MaxVolume)
	}
	return truncated, nil
}
