package strategy

import (
	"github.com/xKoRx/hftgate/sdk/engineproto"
)

// Passive mantiene la sesión con el engine (init, sync, ticks y
// notificaciones de posiciones) pero nunca ejecuta advices.
type Passive struct {
	*Relay
}

// NewPassive crea la variante passive.
func NewPassive(deps Deps) *Passive {
	return &Passive{Relay: newRelay(deps, VariantPassive)}
}

// OnEngineAdvice responde cada operación con una notificación de error.
func (p *Passive) OnEngineAdvice(resp engineproto.Response, _ bool) {
	if resp.Status != engineproto.StatusAdvice {
		p.Relay.OnEngineAdvice(resp, false)
		return
	}
	for _, op := range resp.Operations {
		p.refuse(resp.Instrument, op, "passive mode")
	}
}
