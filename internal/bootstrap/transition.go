package bootstrap

import (
	"github.com/xKoRx/hftgate/sdk/domain"
	"github.com/xKoRx/hftgate/sdk/openapi"
)

// EventKind clasifica los eventos que alimentan la máquina.
type EventKind int

const (
	Connected EventKind = iota + 1
	ConnectionLost
	Data
	StageTimeout
)

// Event es una entrada de Transition. Message y ClientMsgID sólo aplican a
// Data; ClientMsgID no participa de la transición.
type Event struct {
	Kind        EventKind
	Message     openapi.Message
	ClientMsgID string
}

// DataEvent envuelve un mensaje decodificado.
func DataEvent(msg openapi.Message) Event {
	return Event{Kind: Data, Message: msg}
}

// expected es la respuesta que avanza cada estado del handshake.
var expected = map[State]struct {
	payload openapi.PayloadType
	next    State
	actions []Action
}{
	AppAuthorization: {
		payload: openapi.PayloadAppAuthRes,
		next:    AccountAuthorization,
		actions: []Action{SendAccountAuth, ArmStageTimer},
	},
	AccountAuthorization: {
		payload: openapi.PayloadAccountAuthRes,
		next:    AccountInfo,
		actions: []Action{RequestTrader, ArmStageTimer},
	},
	AccountInfo: {
		payload: openapi.PayloadTraderRes,
		next:    InstrumentInfo,
		actions: []Action{ApplyTrader, RequestSymbols, ArmStageTimer},
	},
	InstrumentInfo: {
		payload: openapi.PayloadSymbolsListRes,
		next:    PositionInfo,
		actions: []Action{IndexSymbols, RequestSymbolSpecs, RequestPositions, ArmStageTimer},
	},
	PositionInfo: {
		payload: openapi.PayloadReconcileRes,
		next:    Operational,
		actions: []Action{SeedPositions, StopStageTimer, BootstrapComplete},
	},
}

// Transition calcula el siguiente estado y sus acciones.
//
// Retorna *domain.FatalError cuando la sesión no puede continuar: error
// explícito del broker durante el handshake, o desconexión iniciada por el
// servidor en cualquier estado. En ese caso el estado no cambia.
func Transition(state State, ev Event) (State, []Action, error) {
	switch ev.Kind {
	case Connected:
		return AppAuthorization, []Action{SendAppAuth, ArmStageTimer}, nil

	case ConnectionLost:
		return WaitForConnect, []Action{StopStageTimer, ResetSession}, nil

	case StageTimeout:
		if !state.Handshaking() {
			return state, nil, nil
		}
		return WaitForConnect, []Action{StopStageTimer, RecycleBroker}, nil

	case Data:
		return onData(state, ev.Message)
	}
	return state, nil, nil
}

func onData(state State, msg openapi.Message) (State, []Action, error) {
	if msg == nil {
		return state, nil, nil
	}
	if err := serverTermination(msg); err != nil {
		return state, nil, err
	}

	switch state {
	case Operational:
		return state, []Action{Dispatch}, nil
	case WaitForConnect:
		return state, []Action{LogUnexpected}, nil
	}

	step, ok := expected[state]
	if !ok {
		return state, []Action{LogUnexpected}, nil
	}
	if msg.PayloadType() == step.payload {
		return step.next, append([]Action(nil), step.actions...), nil
	}

	switch m := msg.(type) {
	case *openapi.ErrorRes:
		return state, nil, handshakeRejected(state, m.ErrorCode, m.Description)
	case *openapi.OAErrorRes:
		return state, nil, handshakeRejected(state, m.ErrorCode, m.Description)
	case *openapi.HeartbeatEvent:
		return state, nil, nil
	case *openapi.SymbolByIDRes:
		if state == PositionInfo {
			return state, []Action{ApplySymbolSpecs}, nil
		}
	}
	return state, []Action{LogUnexpected}, nil
}

// serverTermination detecta los eventos con los que el broker cierra la sesión.
func serverTermination(msg openapi.Message) error {
	switch m := msg.(type) {
	case *openapi.ClientDisconnectEvent:
		return domain.NewFatalError(domain.ErrServerDisconnect, "client disconnected by server: "+m.Reason, nil)
	case *openapi.AccountDisconnectEvent:
		return domain.NewFatalError(domain.ErrServerDisconnect, "account disconnected by server", nil)
	case *openapi.AccountsTokenInvalidatedEvent:
		return domain.NewFatalError(domain.ErrTokenInvalidated, "access token invalidated: "+m.Reason, nil)
	}
	return nil
}

func handshakeRejected(state State, code, description string) error {
	cause := domain.NewError(domain.ErrHandshakeRejected, code+": "+description).
		WithDetail("state", state.String())
	return domain.NewFatalError(domain.ErrHandshakeRejected, "broker rejected "+state.String(), cause)
}
