// Package bootstrap contiene la máquina de estados del handshake con el broker.
//
// Transition es una función pura: recibe el estado y un evento y retorna el
// nuevo estado junto a la lista de acciones que el gateway debe ejecutar. No
// realiza I/O ni toca estado compartido.
//
//	WAIT_FOR_CONNECT → APP_AUTHORIZATION → ACCOUNT_AUTHORIZATION → ACCOUNT_INFO
//	    → INSTRUMENT_INFO → POSITION_INFO → OPERATIONAL
package bootstrap

import "fmt"

// State es un estado del handshake.
type State int

const (
	WaitForConnect State = iota
	AppAuthorization
	AccountAuthorization
	AccountInfo
	InstrumentInfo
	PositionInfo
	Operational
)

func (s State) String() string {
	switch s {
	case WaitForConnect:
		return "WAIT_FOR_CONNECT"
	case AppAuthorization:
		return "APP_AUTHORIZATION"
	case AccountAuthorization:
		return "ACCOUNT_AUTHORIZATION"
	case AccountInfo:
		return "ACCOUNT_INFO"
	case InstrumentInfo:
		return "INSTRUMENT_INFO"
	case PositionInfo:
		return "POSITION_INFO"
	case Operational:
		return "OPERATIONAL"
	default:
		return fmt.Sprintf("STATE_%d", int(s))
	}
}

// Ready indica si la sesión con el broker admite operaciones de trading.
func (s State) Ready() bool { return s == Operational }

// Handshaking indica si el estado espera una respuesta del broker.
func (s State) Handshaking() bool { return s > WaitForConnect && s < Operational }
