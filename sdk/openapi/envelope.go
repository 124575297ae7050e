package openapi

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMissingPayloadType indica un envelope sin el campo 1.
var ErrMissingPayloadType = errors.New("envelope without payloadType")

// Envelope es ProtoMessage, el contenedor de todo frame del broker.
type Envelope struct {
	PayloadType PayloadType
	Payload     []byte
	ClientMsgID string
}

// MarshalEnvelope serializa el envelope.
func MarshalEnvelope(env Envelope) []byte {
	b := make([]byte, 0, len(env.Payload)+len(env.ClientMsgID)+16)
	b = appendUvarint(b, 1, uint64(env.PayloadType))
	if env.Payload != nil {
		b = appendBytes(b, 2, env.Payload)
	}
	b = appendOptString(b, 3, env.ClientMsgID)
	return b
}

// UnmarshalEnvelope separa tag, payload y clientMsgId.
func UnmarshalEnvelope(b []byte) (Envelope, error) {
	var (
		env     Envelope
		hasType bool
	)
	err := rangeFields(b, func(f field) error {
		switch f.num {
		case 1:
			var v uint32
			if err := f.uint32(&v); err != nil {
				return err
			}
			env.PayloadType = PayloadType(v)
			hasType = true
		case 2:
			if err := f.expect(protowire.BytesType); err != nil {
				return err
			}
			env.Payload = f.bytes
		case 3:
			return f.string(&env.ClientMsgID)
		}
		return nil
	})
	if err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if !hasType {
		return Envelope{}, ErrMissingPayloadType
	}
	return env, nil
}

// Encode serializa msg dentro de un envelope listo para el transporte.
func Encode(msg Message, clientMsgID string) []byte {
	return MarshalEnvelope(Envelope{
		PayloadType: msg.PayloadType(),
		Payload:     msg.MarshalPayload(),
		ClientMsgID: clientMsgID,
	})
}

// Decode interpreta un frame completo.
//
// Los tags fuera del registro retornan *Unknown sin error. Un payload mal
// formado para un tag conocido sí retorna error.
func Decode(frame []byte) (Envelope, Message, error) {
	env, err := UnmarshalEnvelope(frame)
	if err != nil {
		return Envelope{}, nil, err
	}

	ctor, ok := registry[env.PayloadType]
	if !ok {
		return env, &Unknown{Type: env.PayloadType, Payload: env.Payload}, nil
	}
	msg := ctor()
	if err := msg.UnmarshalPayload(env.Payload); err != nil {
		return env, nil, fmt.Errorf("decode %s: %w", env.PayloadType, err)
	}
	return env, msg, nil
}

// Unknown conserva el payload de un tag no soportado.
type Unknown struct {
	Type    PayloadType
	Payload []byte
}

func (m *Unknown) PayloadType() PayloadType { return m.Type }
func (m *Unknown) MarshalPayload() []byte   { return m.Payload }

func (m *Unknown) UnmarshalPayload(b []byte) error {
	m.Payload = b
	return nil
}

// Known indica si el tag tiene un tipo registrado.
func Known(p PayloadType) bool {
	_, ok := registry[p]
	return ok
}

var registry = map[PayloadType]func() Message{
	PayloadErrorRes:                 func() Message { return &ErrorRes{} },
	PayloadHeartbeatEvent:           func() Message { return &HeartbeatEvent{} },
	PayloadAppAuthReq:               func() Message { return &AppAuthReq{} },
	PayloadAppAuthRes:               func() Message { return &AppAuthRes{} },
	PayloadAccountAuthReq:           func() Message { return &AccountAuthReq{} },
	PayloadAccountAuthRes:           func() Message { return &AccountAuthRes{} },
	PayloadNewOrderReq:              func() Message { return &NewOrderReq{} },
	PayloadClosePositionReq:         func() Message { return &ClosePositionReq{} },
	PayloadSymbolsListReq:           func() Message { return &SymbolsListReq{} },
	PayloadSymbolsListRes:           func() Message { return &SymbolsListRes{} },
	PayloadSymbolByIDReq:            func() Message { return &SymbolByIDReq{} },
	PayloadSymbolByIDRes:            func() Message { return &SymbolByIDRes{} },
	PayloadSymbolChangedEvent:       func() Message { return &SymbolChangedEvent{} },
	PayloadTraderReq:                func() Message { return &TraderReq{} },
	PayloadTraderRes:                func() Message { return &TraderRes{} },
	PayloadTraderUpdatedEvent:       func() Message { return &TraderUpdatedEvent{} },
	PayloadReconcileReq:             func() Message { return &ReconcileReq{} },
	PayloadReconcileRes:             func() Message { return &ReconcileRes{} },
	PayloadExecutionEvent:           func() Message { return &ExecutionEvent{} },
	PayloadSubscribeSpotsReq:        func() Message { return &SubscribeSpotsReq{} },
	PayloadSubscribeSpotsRes:        func() Message { return &SubscribeSpotsRes{} },
	PayloadSpotEvent:                func() Message { return &SpotEvent{} },
	PayloadOrderErrorEvent:          func() Message { return &OrderErrorEvent{} },
	PayloadOAErrorRes:               func() Message { return &OAErrorRes{} },
	PayloadAccountsTokenInvalidated: func() Message { return &AccountsTokenInvalidatedEvent{} },
	PayloadClientDisconnectEvent:    func() Message { return &ClientDisconnectEvent{} },
	PayloadAccountDisconnectEvent:   func() Message { return &AccountDisconnectEvent{} },
}
