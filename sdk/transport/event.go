package transport

import "fmt"

// EventKind clasifica los eventos publicados por un transporte.
type EventKind int

const (
	EventConnected EventKind = iota + 1
	EventData
	EventError
	EventFatal
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventData:
		return "data"
	case EventError:
		return "error"
	case EventFatal:
		return "fatal"
	default:
		return fmt.Sprintf("event_%d", int(k))
	}
}

// Event es la unidad de comunicación entre un transporte y el event loop.
type Event struct {
	Transport string // nombre del enlace ("broker", "engine")
	Kind      EventKind
	Data      []byte // payload completo (EventData)
	Err       error  // causa (EventError, EventFatal)
}
