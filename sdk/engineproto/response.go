package engineproto

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/xKoRx/hftgate/sdk/domain"
)

// Valores de "status" en las respuestas del engine.
const (
	StatusAck    = "ack"
	StatusError  = "error"
	StatusAdvice = "advice"
)

// Operaciones de un advice.
const (
	OpClose = "close"
	OpLong  = "LONG"
	OpShort = "SHORT"
)

// Response es una respuesta del engine.
type Response struct {
	Status     string
	Message    string      // sólo StatusError
	Instrument string      // sólo StatusAdvice
	Operations []Operation // sólo StatusAdvice
}

// Operation es una instrucción individual dentro de un advice.
type Operation struct {
	Op  string
	ID  string
	Qty int64 // sólo LONG/SHORT
}

// IsClose indica si la operación cierra una posición.
func (o Operation) IsClose() bool { return o.Op == OpClose }

// Side retorna la dirección de una operación de apertura.
func (o Operation) Side() domain.TradeSide {
	switch o.Op {
	case OpLong:
		return domain.TradeSideLong
	case OpShort:
		return domain.TradeSideShort
	default:
		return domain.TradeSideUnspecified
	}
}

// Ack construye {"status":"ack"}.
func Ack() Response { return Response{Status: StatusAck} }

// Error construye {"status":"error","message":...}.
func Error(message string) Response { return Response{Status: StatusError, Message: message} }

// Advice construye un advice para un instrumento.
func Advice(instrument string, ops ...Operation) Response {
	return Response{Status: StatusAdvice, Instrument: instrument, Operations: ops}
}

type ackWire struct {
	Status string `json:"status"`
}

type errorWire struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type adviceWire struct {
	Status     string            `json:"status"`
	Instrument string            `json:"instrument"`
	Operations []json.RawMessage `json:"operations"`
}

type closeOpWire struct {
	Op string `json:"op"`
	ID string `json:"id"`
}

type openOpWire struct {
	Op  string `json:"op"`
	ID  string `json:"id"`
	Qty int64  `json:"qty"`
}

// EncodeResponse serializa r como línea terminada en '\n'.
//
// El advice siempre incluye "instrument".
func EncodeResponse(r Response) ([]byte, error) {
	var wire interface{}
	switch r.Status {
	case StatusAck:
		wire = ackWire{Status: StatusAck}
	case StatusError:
		wire = errorWire{Status: StatusError, Message: r.Message}
	case StatusAdvice:
		ops := make([]json.RawMessage, 0, len(r.Operations))
		for _, op := range r.Operations {
			var v interface{}
			switch op.Op {
			case OpClose:
				v = closeOpWire{Op: OpClose, ID: op.ID}
			case OpLong, OpShort:
				v = openOpWire{Op: op.Op, ID: op.ID, Qty: op.Qty}
			default:
				return nil, fmt.Errorf("encode advice: unknown op %q", op.Op)
			}
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encode advice op: %w", err)
			}
			ops = append(ops, raw)
		}
		wire = adviceWire{Status: StatusAdvice, Instrument: r.Instrument, Operations: ops}
	default:
		return nil, fmt.Errorf("encode response: unknown status %q", r.Status)
	}

	out, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return append(out, '\n'), nil
}

// DecodeResponse interpreta una línea del engine con validación estricta.
func DecodeResponse(line []byte) (Response, error) {
	obj, err := parseObject("", line)
	if err != nil {
		return Response{}, err
	}
	status, err := obj.string("status")
	if err != nil {
		return Response{}, err
	}

	switch status {
	case StatusAck:
		return Ack(), nil
	case StatusError:
		msg, err := obj.string("message")
		if err != nil {
			return Response{}, err
		}
		return Error(msg), nil
	case StatusAdvice:
		return decodeAdvice(obj)
	default:
		return Response{}, violation("status", "unknown status %q", status)
	}
}

func decodeAdvice(obj object) (Response, error) {
	instrument, err := obj.string("instrument")
	if err != nil {
		return Response{}, err
	}
	items, err := obj.objects("operations")
	if err != nil {
		return Response{}, err
	}

	ops := make([]Operation, 0, len(items))
	for _, item := range items {
		op, err := decodeOperation(item)
		if err != nil {
			return Response{}, err
		}
		ops = append(ops, op)
	}
	return Advice(instrument, ops...), nil
}

func decodeOperation(obj object) (Operation, error) {
	var (
		op  Operation
		err error
	)
	if op.Op, err = obj.string("op"); err != nil {
		return Operation{}, err
	}
	if op.ID, err = obj.string("id"); err != nil {
		return Operation{}, err
	}
	if op.ID == "" {
		return Operation{}, violation(obj.path("id"), "must not be empty")
	}

	switch op.Op {
	case OpClose:
		return op, nil
	case OpLong, OpShort:
		if op.Qty, err = obj.integer("qty"); err != nil {
			return Operation{}, err
		}
		if op.Qty <= 0 {
			return Operation{}, violation(obj.path("qty"), "must be positive")
		}
		return op, nil
	default:
		return Operation{}, violation(obj.path("op"), "expected close, LONG or SHORT, got %q", op.Op)
	}
}
