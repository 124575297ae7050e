package engineproto

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/xKoRx/hftgate/sdk/domain"
	"github.com/xKoRx/hftgate/sdk/utils"
)

const (
	MethodInit        = "init"
	MethodSync        = "sync"
	MethodTick        = "tick"
	MethodOpenNotify  = "open_notify"
	MethodCloseNotify = "close_notify"
)

// Estados de open_notify/close_notify.
const (
	NotifyOK    = "ok"
	NotifyError = "error"
)

// Request es un mensaje gateway → engine.
type Request interface {
	Method() string
}

// Init abre la sesión con el engine.
type Init struct {
	SessID      string
	Instruments []string
}

// Sync informa una posición abierta que pertenece al engine.
type Sync struct {
	Instrument string
	ID         string
	Timestamp  time.Time
	Direction  domain.TradeSide
	Price      float64
	Qty        int64
}

// Tick reenvía la última cotización junto al estado de la cuenta.
type Tick struct {
	Instrument string
	Timestamp  time.Time
	Ask        float64
	Bid        float64
	Equity     float64
	FreeMargin float64
}

// Notification es el cuerpo común de open_notify y close_notify.
type Notification struct {
	Instrument string
	ID         string
	Status     string
	Price      float64
}

// Failed indica si la operación notificada falló.
func (n Notification) Failed() bool { return n.Status != NotifyOK }

type OpenNotify struct{ Notification }

type CloseNotify struct{ Notification }

func (Init) Method() string        { return MethodInit }
func (Sync) Method() string        { return MethodSync }
func (Tick) Method() string        { return MethodTick }
func (OpenNotify) Method() string  { return MethodOpenNotify }
func (CloseNotify) Method() string { return MethodCloseNotify }

// Representación en el wire. El orden de los campos define el orden de las claves.

type initWire struct {
	Method      string   `json:"method"`
	SessID      string   `json:"sessid"`
	Instruments []string `json:"instruments"`
}

type syncWire struct {
	Method     string  `json:"method"`
	Instrument string  `json:"instrument"`
	ID         string  `json:"id"`
	Timestamp  string  `json:"timestamp"`
	Direction  string  `json:"direction"`
	Price      float64 `json:"price"`
	Qty        int64   `json:"qty"`
}

type tickWire struct {
	Method     string  `json:"method"`
	Instrument string  `json:"instrument"`
	Timestamp  string  `json:"timestamp"`
	Ask        float64 `json:"ask"`
	Bid        float64 `json:"bid"`
	Equity     float64 `json:"equity"`
	FreeMargin float64 `json:"free_margin"`
}

type notifyWire struct {
	Method     string  `json:"method"`
	Instrument string  `json:"instrument"`
	ID         string  `json:"id"`
	Status     string  `json:"status"`
	Price      float64 `json:"price"`
}

// EncodeRequest serializa req como una línea terminada en '\n'.
func EncodeRequest(req Request) ([]byte, error) {
	var wire interface{}
	switch r := req.(type) {
	case Init:
		instruments := r.Instruments
		if instruments == nil {
			instruments = []string{}
		}
		wire = initWire{Method: MethodInit, SessID: r.SessID, Instruments: instruments}
	case Sync:
		if r.Direction != domain.TradeSideLong && r.Direction != domain.TradeSideShort {
			return nil, fmt.Errorf("encode sync: invalid direction %v", r.Direction)
		}
		wire = syncWire{
			Method:     MethodSync,
			Instrument: r.Instrument,
			ID:         r.ID,
			Timestamp:  utils.FormatEngineTimestamp(r.Timestamp),
			Direction:  r.Direction.String(),
			Price:      r.Price,
			Qty:        r.Qty,
		}
	case Tick:
		wire = tickWire{
			Method:     MethodTick,
			Instrument: r.Instrument,
			Timestamp:  utils.FormatEngineTimestamp(r.Timestamp),
			Ask:        r.Ask,
			Bid:        r.Bid,
			Equity:     r.Equity,
			FreeMargin: r.FreeMargin,
		}
	case OpenNotify:
		wire = notifyWireOf(MethodOpenNotify, r.Notification)
	case CloseNotify:
		wire = notifyWireOf(MethodCloseNotify, r.Notification)
	default:
		return nil, fmt.Errorf("encode request: unsupported type %T", req)
	}

	out, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", req.Method(), err)
	}
	return append(out, '\n'), nil
}

func notifyWireOf(method string, n Notification) notifyWire {
	return notifyWire{
		Method:     method,
		Instrument: n.Instrument,
		ID:         n.ID,
		Status:     n.Status,
		Price:      n.Price,
	}
}

// DecodeRequest interpreta una línea gateway → engine con validación estricta.
func DecodeRequest(line []byte) (Request, error) {
	obj, err := parseObject("", line)
	if err != nil {
		return nil, err
	}
	method, err := obj.string("method")
	if err != nil {
		return nil, err
	}

	switch method {
	case MethodInit:
		return decodeInit(obj)
	case MethodSync:
		return decodeSync(obj)
	case MethodTick:
		return decodeTick(obj)
	case MethodOpenNotify:
		n, err := decodeNotification(obj)
		if err != nil {
			return nil, err
		}
		return OpenNotify{n}, nil
	case MethodCloseNotify:
		n, err := decodeNotification(obj)
		if err != nil {
			return nil, err
		}
		return CloseNotify{n}, nil
	default:
		return nil, violation("method", "unknown method %q", method)
	}
}

func decodeInit(obj object) (Request, error) {
	var (
		r   Init
		err error
	)
	if r.SessID, err = obj.string("sessid"); err != nil {
		return nil, err
	}
	if r.Instruments, err = obj.strings("instruments"); err != nil {
		return nil, err
	}
	return r, nil
}

func decodeSync(obj object) (Request, error) {
	var (
		r   Sync
		err error
	)
	if r.Instrument, err = obj.string("instrument"); err != nil {
		return nil, err
	}
	if r.ID, err = obj.string("id"); err != nil {
		return nil, err
	}
	if r.Timestamp, err = decodeTimestamp(obj, "timestamp"); err != nil {
		return nil, err
	}
	if r.Direction, err = decodeDirection(obj, "direction"); err != nil {
		return nil, err
	}
	if r.Price, err = obj.number("price"); err != nil {
		return nil, err
	}
	if r.Qty, err = obj.integer("qty"); err != nil {
		return nil, err
	}
	return r, nil
}

func decodeTick(obj object) (Request, error) {
	var (
		r   Tick
		err error
	)
	if r.Instrument, err = obj.string("instrument"); err != nil {
		return nil, err
	}
	if r.Timestamp, err = decodeTimestamp(obj, "timestamp"); err != nil {
		return nil, err
	}
	if r.Ask, err = obj.number("ask"); err != nil {
		return nil, err
	}
	if r.Bid, err = obj.number("bid"); err != nil {
		return nil, err
	}
	if r.Equity, err = obj.number("equity"); err != nil {
		return nil, err
	}
	if r.FreeMargin, err = obj.number("free_margin"); err != nil {
		return nil, err
	}
	return r, nil
}

func decodeNotification(obj object) (Notification, error) {
	var (
		n   Notification
		err error
	)
	if n.Instrument, err = obj.string("instrument"); err != nil {
		return Notification{}, err
	}
	if n.ID, err = obj.string("id"); err != nil {
		return Notification{}, err
	}
	if n.Status, err = obj.string("status"); err != nil {
		return Notification{}, err
	}
	if n.Status != NotifyOK && n.Status != NotifyError {
		return Notification{}, violation(obj.path("status"), "expected %q or %q", NotifyOK, NotifyError)
	}
	if n.Price, err = obj.number("price"); err != nil {
		return Notification{}, err
	}
	return n, nil
}

func decodeTimestamp(obj object, field string) (time.Time, error) {
	s, err := obj.string(field)
	if err != nil {
		return time.Time{}, err
	}
	ts, err := utils.ParseEngineTimestamp(s)
	if err != nil {
		return time.Time{}, violation(obj.path(field), "expected %q layout", utils.EngineTimestampLayout)
	}
	return ts, nil
}

func decodeDirection(obj object, field string) (domain.TradeSide, error) {
	s, err := obj.string(field)
	if err != nil {
		return domain.TradeSideUnspecified, err
	}
	switch s {
	case "LONG":
		return domain.TradeSideLong, nil
	case "SHORT":
		return domain.TradeSideShort, nil
	default:
		return domain.TradeSideUnspecified, violation(obj.path(field), "expected LONG or SHORT, got %q", s)
	}
}
