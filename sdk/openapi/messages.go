package openapi

// Message es un payload tipado del broker.
type Message interface {
	PayloadType() PayloadType
	MarshalPayload() []byte
	UnmarshalPayload([]byte) error
}

// ---- sesión ----

// HeartbeatEvent no tiene campos propios.
type HeartbeatEvent struct{}

func (*HeartbeatEvent) PayloadType() PayloadType        { return PayloadHeartbeatEvent }
func (*HeartbeatEvent) MarshalPayload() []byte          { return nil }
func (*HeartbeatEvent) UnmarshalPayload(b []byte) error { return rangeFields(b, ignoreField) }

// ErrorRes es el error genérico de la capa común (tag 50).
type ErrorRes struct {
	ErrorCode   string
	Description string
}

func (*ErrorRes) PayloadType() PayloadType { return PayloadErrorRes }

func (m *ErrorRes) MarshalPayload() []byte {
	var b []byte
	b = appendString(b, 2, m.ErrorCode)
	b = appendOptString(b, 3, m.Description)
	return b
}

func (m *ErrorRes) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 2:
			return f.string(&m.ErrorCode)
		case 3:
			return f.string(&m.Description)
		}
		return nil
	})
}

// OAErrorRes es el error de la capa Open API (tag 2142).
type OAErrorRes struct {
	CtidTraderAccountID int64
	ErrorCode           string
	Description         string
}

func (*OAErrorRes) PayloadType() PayloadType { return PayloadOAErrorRes }

func (m *OAErrorRes) MarshalPayload() []byte {
	var b []byte
	b = appendOptInt64(b, 2, m.CtidTraderAccountID)
	b = appendString(b, 3, m.ErrorCode)
	b = appendOptString(b, 4, m.Description)
	return b
}

func (m *OAErrorRes) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 2:
			return f.int64(&m.CtidTraderAccountID)
		case 3:
			return f.string(&m.ErrorCode)
		case 4:
			return f.string(&m.Description)
		}
		return nil
	})
}

// AppAuthReq autentica la aplicación.
type AppAuthReq struct {
	ClientID     string
	ClientSecret string
}

func (*AppAuthReq) PayloadType() PayloadType { return PayloadAppAuthReq }

func (m *AppAuthReq) MarshalPayload() []byte {
	var b []byte
	b = appendString(b, 2, m.ClientID)
	b = appendString(b, 3, m.ClientSecret)
	return b
}

func (m *AppAuthReq) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 2:
			return f.string(&m.ClientID)
		case 3:
			return f.string(&m.ClientSecret)
		}
		return nil
	})
}

type AppAuthRes struct{}

func (*AppAuthRes) PayloadType() PayloadType        { return PayloadAppAuthRes }
func (*AppAuthRes) MarshalPayload() []byte          { return nil }
func (*AppAuthRes) UnmarshalPayload(b []byte) error { return rangeFields(b, ignoreField) }

// AccountAuthReq autentica la cuenta con su access token.
type AccountAuthReq struct {
	CtidTraderAccountID int64
	AccessToken         string
}

func (*AccountAuthReq) PayloadType() PayloadType { return PayloadAccountAuthReq }

func (m *AccountAuthReq) MarshalPayload() []byte {
	var b []byte
	b = appendInt64(b, 2, m.CtidTraderAccountID)
	b = appendString(b, 3, m.AccessToken)
	return b
}

func (m *AccountAuthReq) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 2:
			return f.int64(&m.CtidTraderAccountID)
		case 3:
			return f.string(&m.AccessToken)
		}
		return nil
	})
}

type AccountAuthRes struct {
	CtidTraderAccountID int64
}

func (*AccountAuthRes) PayloadType() PayloadType { return PayloadAccountAuthRes }

func (m *AccountAuthRes) MarshalPayload() []byte {
	return appendInt64(nil, 2, m.CtidTraderAccountID)
}

func (m *AccountAuthRes) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		if f.num == 2 {
			return f.int64(&m.CtidTraderAccountID)
		}
		return nil
	})
}

// ---- cuenta ----

// accountScoped cubre los requests que sólo llevan ctidTraderAccountId.
type accountScoped struct {
	CtidTraderAccountID int64
}

func (m *accountScoped) MarshalPayload() []byte {
	return appendInt64(nil, 2, m.CtidTraderAccountID)
}

func (m *accountScoped) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		if f.num == 2 {
			return f.int64(&m.CtidTraderAccountID)
		}
		return nil
	})
}

type TraderReq struct{ accountScoped }

// NewTraderReq pide el estado de la cuenta.
func NewTraderReq(accountID int64) *TraderReq {
	return &TraderReq{accountScoped{CtidTraderAccountID: accountID}}
}

func (*TraderReq) PayloadType() PayloadType { return PayloadTraderReq }

// traderHolder cubre TraderRes y TraderUpdatedEvent, que comparten layout.
type traderHolder struct {
	CtidTraderAccountID int64
	Trader              Trader
}

func (m *traderHolder) MarshalPayload() []byte {
	b := appendInt64(nil, 2, m.CtidTraderAccountID)
	return appendMessage(b, 3, &m.Trader)
}

func (m *traderHolder) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 2:
			return f.int64(&m.CtidTraderAccountID)
		case 3:
			return f.message(&m.Trader)
		}
		return nil
	})
}

type TraderRes struct{ traderHolder }

func (*TraderRes) PayloadType() PayloadType { return PayloadTraderRes }

type TraderUpdatedEvent struct{ traderHolder }

func (*TraderUpdatedEvent) PayloadType() PayloadType { return PayloadTraderUpdatedEvent }

// ---- símbolos ----

type SymbolsListReq struct {
	CtidTraderAccountID    int64
	IncludeArchivedSymbols bool
}

func (*SymbolsListReq) PayloadType() PayloadType { return PayloadSymbolsListReq }

func (m *SymbolsListReq) MarshalPayload() []byte {
	b := appendInt64(nil, 2, m.CtidTraderAccountID)
	if m.IncludeArchivedSymbols {
		b = appendBool(b, 3, true)
	}
	return b
}

func (m *SymbolsListReq) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 2:
			return f.int64(&m.CtidTraderAccountID)
		case 3:
			return f.bool(&m.IncludeArchivedSymbols)
		}
		return nil
	})
}

type SymbolsListRes struct {
	CtidTraderAccountID int64
	Symbols             []LightSymbol
}

func (*SymbolsListRes) PayloadType() PayloadType { return PayloadSymbolsListRes }

func (m *SymbolsListRes) MarshalPayload() []byte {
	b := appendInt64(nil, 2, m.CtidTraderAccountID)
	for i := range m.Symbols {
		b = appendMessage(b, 3, &m.Symbols[i])
	}
	return b
}

func (m *SymbolsListRes) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 2:
			return f.int64(&m.CtidTraderAccountID)
		case 3:
			var s LightSymbol
			if err := f.message(&s); err != nil {
				return err
			}
			m.Symbols = append(m.Symbols, s)
		}
		return nil
	})
}

// symbolIDs cubre los requests con ctidTraderAccountId + symbolId repetido.
type symbolIDs struct {
	CtidTraderAccountID int64
	SymbolIDs           []int64
}

func (m *symbolIDs) MarshalPayload() []byte {
	b := appendInt64(nil, 2, m.CtidTraderAccountID)
	for _, id := range m.SymbolIDs {
		b = appendInt64(b, 3, id)
	}
	return b
}

func (m *symbolIDs) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 2:
			return f.int64(&m.CtidTraderAccountID)
		case 3:
			return f.appendInt64s(&m.SymbolIDs)
		}
		return nil
	})
}

type SymbolByIDReq struct{ symbolIDs }

// NewSymbolByIDReq pide la especificación completa de los símbolos.
func NewSymbolByIDReq(accountID int64, ids []int64) *SymbolByIDReq {
	return &SymbolByIDReq{symbolIDs{CtidTraderAccountID: accountID, SymbolIDs: ids}}
}

func (*SymbolByIDReq) PayloadType() PayloadType { return PayloadSymbolByIDReq }

type SymbolByIDRes struct {
	CtidTraderAccountID int64
	Symbols             []Symbol
}

func (*SymbolByIDRes) PayloadType() PayloadType { return PayloadSymbolByIDRes }

func (m *SymbolByIDRes) MarshalPayload() []byte {
	b := appendInt64(nil, 2, m.CtidTraderAccountID)
	for i := range m.Symbols {
		b = appendMessage(b, 3, &m.Symbols[i])
	}
	return b
}

func (m *SymbolByIDRes) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 2:
			return f.int64(&m.CtidTraderAccountID)
		case 3:
			var s Symbol
			if err := f.message(&s); err != nil {
				return err
			}
			m.Symbols = append(m.Symbols, s)
		}
		return nil
	})
}

type SymbolChangedEvent struct{ symbolIDs }

func (*SymbolChangedEvent) PayloadType() PayloadType { return PayloadSymbolChangedEvent }

type SubscribeSpotsReq struct{ symbolIDs }

// NewSubscribeSpotsReq suscribe los símbolos en un único request.
func NewSubscribeSpotsReq(accountID int64, ids []int64) *SubscribeSpotsReq {
	return &SubscribeSpotsReq{symbolIDs{CtidTraderAccountID: accountID, SymbolIDs: ids}}
}

func (*SubscribeSpotsReq) PayloadType() PayloadType { return PayloadSubscribeSpotsReq }

type SubscribeSpotsRes struct{ accountScoped }

func (*SubscribeSpotsRes) PayloadType() PayloadType { return PayloadSubscribeSpotsRes }

// SpotEvent trae bid/ask en unidades de 1/100000. Un lado ausente llega en 0.
type SpotEvent struct {
	CtidTraderAccountID int64
	SymbolID            int64
	Bid                 uint64
	Ask                 uint64
	Timestamp           int64
}

func (*SpotEvent) PayloadType() PayloadType { return PayloadSpotEvent }

func (m *SpotEvent) MarshalPayload() []byte {
	b := appendInt64(nil, 2, m.CtidTraderAccountID)
	b = appendInt64(b, 3, m.SymbolID)
	if m.Bid != 0 {
		b = appendUvarint(b, 4, m.Bid)
	}
	if m.Ask != 0 {
		b = appendUvarint(b, 5, m.Ask)
	}
	b = appendOptInt64(b, 8, m.Timestamp)
	return b
}

func (m *SpotEvent) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 2:
			return f.int64(&m.CtidTraderAccountID)
		case 3:
			return f.int64(&m.SymbolID)
		case 4:
			return f.uint64(&m.Bid)
		case 5:
			return f.uint64(&m.Ask)
		case 8:
			return f.int64(&m.Timestamp)
		}
		return nil
	})
}

// ---- trading ----

type NewOrderReq struct {
	CtidTraderAccountID int64
	SymbolID            int64
	OrderType           OrderType
	TradeSide           TradeSide
	Volume              int64
	Label               string
	ClientOrderID       string
}

func (*NewOrderReq) PayloadType() PayloadType { return PayloadNewOrderReq }

func (m *NewOrderReq) MarshalPayload() []byte {
	var b []byte
	b = appendInt64(b, 2, m.CtidTraderAccountID)
	b = appendInt64(b, 3, m.SymbolID)
	b = appendInt64(b, 4, int64(m.OrderType))
	b = appendInt64(b, 5, int64(m.TradeSide))
	b = appendInt64(b, 6, m.Volume)
	b = appendOptString(b, 16, m.Label)
	b = appendOptString(b, 18, m.ClientOrderID)
	return b
}

func (m *NewOrderReq) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 2:
			return f.int64(&m.CtidTraderAccountID)
		case 3:
			return f.int64(&m.SymbolID)
		case 4:
			return f.int32((*int32)(&m.OrderType))
		case 5:
			return f.int32((*int32)(&m.TradeSide))
		case 6:
			return f.int64(&m.Volume)
		case 16:
			return f.string(&m.Label)
		case 18:
			return f.string(&m.ClientOrderID)
		}
		return nil
	})
}

type ClosePositionReq struct {
	CtidTraderAccountID int64
	PositionID          int64
	Volume              int64
}

func (*ClosePositionReq) PayloadType() PayloadType { return PayloadClosePositionReq }

func (m *ClosePositionReq) MarshalPayload() []byte {
	var b []byte
	b = appendInt64(b, 2, m.CtidTraderAccountID)
	b = appendInt64(b, 3, m.PositionID)
	b = appendInt64(b, 4, m.Volume)
	return b
}

func (m *ClosePositionReq) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 2:
			return f.int64(&m.CtidTraderAccountID)
		case 3:
			return f.int64(&m.PositionID)
		case 4:
			return f.int64(&m.Volume)
		}
		return nil
	})
}

type ReconcileReq struct{ accountScoped }

// NewReconcileReq pide el snapshot de posiciones y órdenes abiertas.
func NewReconcileReq(accountID int64) *ReconcileReq {
	return &ReconcileReq{accountScoped{CtidTraderAccountID: accountID}}
}

func (*ReconcileReq) PayloadType() PayloadType { return PayloadReconcileReq }

type ReconcileRes struct {
	CtidTraderAccountID int64
	Positions           []Position
	Orders              []Order
}

func (*ReconcileRes) PayloadType() PayloadType { return PayloadReconcileRes }

func (m *ReconcileRes) MarshalPayload() []byte {
	b := appendInt64(nil, 2, m.CtidTraderAccountID)
	for i := range m.Positions {
		b = appendMessage(b, 3, &m.Positions[i])
	}
	for i := range m.Orders {
		b = appendMessage(b, 4, &m.Orders[i])
	}
	return b
}

func (m *ReconcileRes) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 2:
			return f.int64(&m.CtidTraderAccountID)
		case 3:
			var p Position
			if err := f.message(&p); err != nil {
				return err
			}
			m.Positions = append(m.Positions, p)
		case 4:
			var o Order
			if err := f.message(&o); err != nil {
				return err
			}
			m.Orders = append(m.Orders, o)
		}
		return nil
	})
}

// ExecutionEvent reporta aceptación, fill o rechazo de una orden.
// Position, Order y Deal son opcionales.
type ExecutionEvent struct {
	CtidTraderAccountID int64
	ExecutionType       ExecutionType
	Position            *Position
	Order               *Order
	Deal                *Deal
	ErrorCode           string
}

func (*ExecutionEvent) PayloadType() PayloadType { return PayloadExecutionEvent }

func (m *ExecutionEvent) MarshalPayload() []byte {
	b := appendInt64(nil, 2, m.CtidTraderAccountID)
	b = appendInt64(b, 3, int64(m.ExecutionType))
	if m.Position != nil {
		b = appendMessage(b, 4, m.Position)
	}
	if m.Order != nil {
		b = appendMessage(b, 5, m.Order)
	}
	if m.Deal != nil {
		b = appendMessage(b, 6, m.Deal)
	}
	b = appendOptString(b, 9, m.ErrorCode)
	return b
}

func (m *ExecutionEvent) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 2:
			return f.int64(&m.CtidTraderAccountID)
		case 3:
			return f.int32((*int32)(&m.ExecutionType))
		case 4:
			m.Position = &Position{}
			return f.message(m.Position)
		case 5:
			m.Order = &Order{}
			return f.message(m.Order)
		case 6:
			m.Deal = &Deal{}
			return f.message(m.Deal)
		case 9:
			return f.string(&m.ErrorCode)
		}
		return nil
	})
}

type OrderErrorEvent struct {
	ErrorCode           string
	OrderID             int64
	CtidTraderAccountID int64
	PositionID          int64
	Description         string
}

func (*OrderErrorEvent) PayloadType() PayloadType { return PayloadOrderErrorEvent }

func (m *OrderErrorEvent) MarshalPayload() []byte {
	var b []byte
	b = appendString(b, 2, m.ErrorCode)
	b = appendOptInt64(b, 3, m.OrderID)
	b = appendInt64(b, 5, m.CtidTraderAccountID)
	b = appendOptInt64(b, 6, m.PositionID)
	b = appendOptString(b, 7, m.Description)
	return b
}

func (m *OrderErrorEvent) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 2:
			return f.string(&m.ErrorCode)
		case 3:
			return f.int64(&m.OrderID)
		case 5:
			return f.int64(&m.CtidTraderAccountID)
		case 6:
			return f.int64(&m.PositionID)
		case 7:
			return f.string(&m.Description)
		}
		return nil
	})
}

// ---- desconexiones ----

type ClientDisconnectEvent struct {
	Reason string
}

func (*ClientDisconnectEvent) PayloadType() PayloadType { return PayloadClientDisconnectEvent }

func (m *ClientDisconnectEvent) MarshalPayload() []byte {
	return appendOptString(nil, 2, m.Reason)
}

func (m *ClientDisconnectEvent) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		if f.num == 2 {
			return f.string(&m.Reason)
		}
		return nil
	})
}

type AccountDisconnectEvent struct{ accountScoped }

func (*AccountDisconnectEvent) PayloadType() PayloadType { return PayloadAccountDisconnectEvent }

type AccountsTokenInvalidatedEvent struct {
	CtidTraderAccountIDs []int64
	Reason               string
}

func (*AccountsTokenInvalidatedEvent) PayloadType() PayloadType {
	return PayloadAccountsTokenInvalidated
}

func (m *AccountsTokenInvalidatedEvent) MarshalPayload() []byte {
	var b []byte
	for _, id := range m.CtidTraderAccountIDs {
		b = appendInt64(b, 2, id)
	}
	return appendOptString(b, 3, m.Reason)
}

func (m *AccountsTokenInvalidatedEvent) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 2:
			return f.appendInt64s(&m.CtidTraderAccountIDs)
		case 3:
			return f.string(&m.Reason)
		}
		return nil
	})
}

func ignoreField(field) error { return nil }

// NewTraderRes arma la respuesta TRADER_RES.
func NewTraderRes(accountID int64, trader Trader) *TraderRes {
	return &TraderRes{traderHolder{CtidTraderAccountID: accountID, Trader: trader}}
}

// NewTraderUpdatedEvent arma el evento TRADER_UPDATE.
func NewTraderUpdatedEvent(accountID int64, trader Trader) *TraderUpdatedEvent {
	return &TraderUpdatedEvent{traderHolder{CtidTraderAccountID: accountID, Trader: trader}}
}

func NewSymbolChangedEvent(accountID int64, ids []int64) *SymbolChangedEvent {
	return &SymbolChangedEvent{symbolIDs{CtidTraderAccountID: accountID, SymbolIDs: ids}}
}

func NewSubscribeSpotsRes(accountID int64) *SubscribeSpotsRes {
	return &SubscribeSpotsRes{accountScoped{CtidTraderAccountID: accountID}}
}

func NewAccountDisconnectEvent(accountID int64) *AccountDisconnectEvent {
	return &AccountDisconnectEvent{accountScoped{CtidTraderAccountID: accountID}}
}
