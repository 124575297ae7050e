package semconv

import "go.opentelemetry.io/otel/attribute"

// Gateway contiene atributos semánticos específicos del gateway broker ↔ engine.
//
// # Identificadores
//
//   - gw.account_id: ctidTraderAccountId de la cuenta
//   - gw.session_id: sessid enviado al engine
//   - gw.position_id: positionId asignado por el broker
//   - gw.label: label asignado por el engine (id de advice)
//
// # Trading
//
//   - gw.instrument: ticker del instrumento (EURUSD, etc.)
//   - gw.side: LONG/SHORT
//   - gw.volume: volumen en lotes enteros
//   - gw.price: precio de ejecución o cierre
//
// # Protocolo
//
//   - gw.payload_type: tag del envelope del broker
//   - gw.state: estado del bootstrap
//   - gw.transport: broker/engine
//   - gw.attempt: intento de reconexión
//
// # Uso
//
//	client.Info(ctx, "Position opened",
//	    semconv.Gateway.PositionID.Int64(42),
//	    semconv.Gateway.Instrument.String("EURUSD"),
//	)
var Gateway = gatewayAttributes{
	AccountID:  attribute.Key("gw.account_id"),
	SessionID:  attribute.Key("gw.session_id"),
	PositionID: attribute.Key("gw.position_id"),
	OrderID:    attribute.Key("gw.order_id"),
	Label:      attribute.Key("gw.label"),

	Instrument: attribute.Key("gw.instrument"),
	Side:       attribute.Key("gw.side"),
	Volume:     attribute.Key("gw.volume"),
	Price:      attribute.Key("gw.price"),

	PayloadType: attribute.Key("gw.payload_type"),
	State:       attribute.Key("gw.state"),
	Transport:   attribute.Key("gw.transport"),
	Attempt:     attribute.Key("gw.attempt"),
	Operation:   attribute.Key("gw.operation"),

	Status:    attribute.Key("gw.status"),
	ErrorCode: attribute.Key("gw.error_code"),
	Reason:    attribute.Key("gw.reason"),
	Component: attribute.Key("gw.component"),
}

type gatewayAttributes struct {
	AccountID  attribute.Key
	SessionID  attribute.Key
	PositionID attribute.Key
	OrderID    attribute.Key
	Label      attribute.Key

	Instrument attribute.Key
	Side       attribute.Key
	Volume     attribute.Key
	Price      attribute.Key

	PayloadType attribute.Key
	State       attribute.Key
	Transport   attribute.Key // broker/engine
	Attempt     attribute.Key
	Operation   attribute.Key // LONG/SHORT/close

	Status    attribute.Key // ok/error/rejected
	ErrorCode attribute.Key
	Reason    attribute.Key
	Component attribute.Key
}

// TransportValues valores válidos para gw.transport
var TransportValues = struct {
	Broker string
	Engine string
}{
	Broker: "broker",
	Engine: "engine",
}

// StatusValues valores válidos para gw.status
var StatusValues = struct {
	OK       string
	Error    string
	Rejected string
}{
	OK:       "ok",
	Error:    "error",
	Rejected: "rejected",
}

// PositionAttributes crea atributos para una posición.
//
// Example:
//
//	attrs := semconv.PositionAttributes(42, "hft_1700000000a", "EURUSD")
//	client.Info(ctx, "Position closed", attrs...)
func PositionAttributes(positionID int64, label, instrument string) []attribute.KeyValue {
	return []attribute.KeyValue{
		Gateway.PositionID.Int64(positionID),
		Gateway.Label.String(label),
		Gateway.Instrument.String(instrument),
	}
}
