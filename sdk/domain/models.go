package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TradeSide representa la dirección de una posición.
type TradeSide int

const (
	TradeSideUnspecified TradeSide = iota
	TradeSideLong                  // compra (BUY en el broker)
	TradeSideShort                 // venta (SELL en el broker)
)

// String retorna LONG/SHORT, el mismo literal que usa el protocolo del engine.
func (s TradeSide) String() string {
	switch s {
	case TradeSideLong:
		return "LONG"
	case TradeSideShort:
		return "SHORT"
	default:
		return "UNSPECIFIED"
	}
}

// Sign retorna +1 para LONG y -1 para SHORT.
func (s TradeSide) Sign() decimal.Decimal {
	if s == TradeSideShort {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// ParseTradeSide convierte "LONG"/"SHORT" (case-insensitive) a TradeSide.
func ParseTradeSide(s string) (TradeSide, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LONG":
		return TradeSideLong, nil
	case "SHORT":
		return TradeSideShort, nil
	default:
		return TradeSideUnspecified, NewValidationError("direction", s, "must be LONG or SHORT")
	}
}

// PositionStatus es el estado de posición reportado por el broker.
//
// La numeración coincide con la del wire del broker.
type PositionStatus int

const (
	PositionStatusUnspecified PositionStatus = 0
	PositionStatusOpen        PositionStatus = 1
	PositionStatusClosed      PositionStatus = 2
	PositionStatusCreated     PositionStatus = 3
	PositionStatusError       PositionStatus = 4
)

func (s PositionStatus) String() string {
	switch s {
	case PositionStatusOpen:
		return "OPEN"
	case PositionStatusClosed:
		return "CLOSED"
	case PositionStatusCreated:
		return "CREATED"
	case PositionStatusError:
		return "ERROR"
	default:
		return fmt.Sprintf("STATUS_%d", int(s))
	}
}

// Position representa una posición abierta en la tabla autoritativa.
//
// Invariante: a lo sumo una Position viva por PositionID.
type Position struct {
	PositionID     int64           `json:"position_id"`
	Label          string          `json:"label"` // vacío = no pertenece al engine
	InstrumentID   int64           `json:"instrument_id"`
	Instrument     string          `json:"instrument"`
	Side           TradeSide       `json:"side"`
	Volume         int64           `json:"volume"`
	OpenTimestamp  int64           `json:"open_timestamp"` // epoch millis
	ExecutionPrice decimal.Decimal `json:"execution_price"`
	UsedMargin     decimal.Decimal `json:"used_margin"`
	Swap           decimal.Decimal `json:"swap"`
	Commission     decimal.Decimal `json:"commission"`
}

// Owned indica si la posición fue abierta por el engine (tiene label).
func (p *Position) Owned() bool {
	return p.Label != ""
}

// ClosedPositionInfo describe un cierre. Registro de un solo uso, no se almacena.
type ClosedPositionInfo struct {
	PositionID  int64
	Label       string
	Instrument  string
	Side        TradeSide
	Volume      int64
	EntryPrice  decimal.Decimal
	ClosePrice  decimal.Decimal
	GrossProfit decimal.Decimal
	Balance     decimal.Decimal // balance de la cuenta tras aplicar el deal
	Timestamp   int64
}

// OrderErrorInfo describe un rechazo de orden. Registro de un solo uso, no se almacena.
type OrderErrorInfo struct {
	PositionID  int64
	OrderID     int64
	Label       string
	Instrument  string
	Side        TradeSide
	Volume      int64
	ErrorCode   string
	Description string
}

func (e OrderErrorInfo) String() string {
	if e.Description == "" {
		return e.ErrorCode
	}
	return e.ErrorCode + ": " + e.Description
}

// Tick es la última cotización conocida de un instrumento.
type Tick struct {
	Instrument string
	Ask        decimal.Decimal
	Bid        decimal.Decimal
	Timestamp  time.Time
}

// Ready indica si ya se observaron ask y bid positivos.
func (t Tick) Ready() bool {
	return t.Ask.IsPositive() && t.Bid.IsPositive()
}

// InstrumentInfo contiene los límites de volumen de un instrumento.
type InstrumentInfo struct {
	InstrumentID int64
	Ticker       string
	MinVolume    int64
	MaxVolume    int64
	StepVolume   int64
}

// Account es el estado de la cuenta de trading.
type Account struct {
	AccountID             int64
	Balance               decimal.Decimal
	BrokerName            string
	Leverage              decimal.Decimal
	RegistrationTimestamp int64
	MoneyDigits           uint32
}
