// Package domain contiene los tipos de dominio compartidos por el gateway.
//
// # Responsabilidades
//
//   - Modelos: Position, Tick, InstrumentInfo, Account y los registros transitorios
//     ClosedPositionInfo / OrderErrorInfo entregados a callbacks.
//   - Escalado monetario por money-digits y escalado de precios del broker.
//   - Normalización de volumen contra step/min/max del instrumento.
//   - Sistema de errores: TradingError, ValidationError y FatalError.
//
// # Escalado
//
// El broker envía montos como enteros acompañados de un exponente por mensaje:
//
//	balance := domain.ScaleMoney(10053099944, 8)
//	// => 100.53099944
//
// Los precios de spot llegan en unidades de 1/100000:
//
//	bid := domain.ScalePrice(108490)
//	// => 1.0849
//
// # Volumen
//
//	info := domain.InstrumentInfo{MinVolume: 1000, MaxVolume: 50000, StepVolume: 100}
//	vol, err := domain.NormalizeVolume(info, 1050)
//	// => 1000, nil
//
// # Errores fatales
//
// Los componentes del core nunca terminan el proceso. Señalan condiciones
// irrecuperables con *FatalError y el supervisor decide:
//
//	if domain.IsFatalError(err) {
//	    os.Exit(1)
//	}
package domain
