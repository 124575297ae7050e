// Package strategy implementa la superficie de callbacks que consume el
// gateway: eventos del reconciler, fin del bootstrap, ciclo de vida del link
// con el engine y advices recibidos.
//
// Las variantes forman un conjunto cerrado elegido al arrancar:
//
//	relay   puente completo con el engine: init/sync/tick, ejecución de advices y notificaciones
//	passive igual que relay pero nunca opera; responde cada advice con una notificación de error
package strategy

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xKoRx/hftgate/internal/reconciler"
	"github.com/xKoRx/hftgate/sdk/domain"
	"github.com/xKoRx/hftgate/sdk/engineproto"
	"github.com/xKoRx/hftgate/sdk/telemetry"
)

const (
	VariantRelay   = "relay"
	VariantPassive = "passive"
)

// ErrUnknownVariant se retorna cuando la configuración pide una variante inexistente.
var ErrUnknownVariant = errors.New("unknown strategy variant")

// Strategy recibe todos los eventos de dominio del gateway.
//
// Los métodos se invocan siempre desde la goroutine del event loop.
type Strategy interface {
	reconciler.Listener

	Name() string
	OnBootstrapComplete()
	OnBrokerLost()
	OnEngineConnected()
	OnEngineLost()
	OnEngineAdvice(resp engineproto.Response, brokerReady bool)
}

// EngineSender entrega requests al engine.
type EngineSender interface {
	SendEngine(req engineproto.Request) error
}

// Broker son las operaciones del reconciler que usa una estrategia.
type Broker interface {
	CreateMarketOrderEx(ticker string, side domain.TradeSide, volume int64, label string) (int64, error)
	ClosePositionByLabel(label string) (domain.Position, error)
	OwnedPositions() []domain.Position
	Equity() decimal.Decimal
	FreeMargin() decimal.Decimal
}

// Ledger persiste el ciclo de vida de cada advice por label.
//
// Reserve debe fallar con un error de código domain.ErrDuplicateAdvice si el
// label ya está pendiente o abierto.
type Ledger interface {
	Reserve(label, instrument string, side domain.TradeSide, qty int64) error
	MarkOpen(label string, positionID int64, price decimal.Decimal) error
	MarkClosed(label string, price decimal.Decimal) error
	MarkFailed(label, reason string) error
}

// Deps agrupa los colaboradores de una estrategia.
type Deps struct {
	SessionID   string
	Instruments []string
	Engine      EngineSender
	Broker      Broker
	Ledger      Ledger // opcional
	Telemetry   *telemetry.Client
}

type constructor func(Deps) Strategy

var variants = map[string]constructor{
	VariantRelay:   func(d Deps) Strategy { return NewRelay(d) },
	VariantPassive: func(d Deps) Strategy { return NewPassive(d) },
}

// New construye la variante indicada.
//
// Example:
//
//	s, err := strategy.New("relay", strategy.Deps{SessionID: "icmarkets-session", ...})
func New(variant string, deps Deps) (Strategy, error) {
	build, ok := variants[strings.ToLower(strings.TrimSpace(variant))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownVariant, variant, strings.Join(Variants(), ", "))
	}
	return build(deps), nil
}

// Variants lista las variantes disponibles ordenadas.
func Variants() []string {
	out := make([]string, 0, len(variants))
	for name := range variants {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
