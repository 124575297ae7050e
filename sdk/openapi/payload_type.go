package openapi

import "fmt"

// PayloadType es el tag numérico del envelope.
type PayloadType uint32

const (
	PayloadErrorRes       PayloadType = 50
	PayloadHeartbeatEvent PayloadType = 51

	PayloadAppAuthReq               PayloadType = 2100
	PayloadAppAuthRes               PayloadType = 2101
	PayloadAccountAuthReq           PayloadType = 2102
	PayloadAccountAuthRes           PayloadType = 2103
	PayloadNewOrderReq              PayloadType = 2106
	PayloadClosePositionReq         PayloadType = 2111
	PayloadSymbolsListReq           PayloadType = 2114
	PayloadSymbolsListRes           PayloadType = 2115
	PayloadSymbolByIDReq            PayloadType = 2116
	PayloadSymbolByIDRes            PayloadType = 2117
	PayloadSymbolChangedEvent       PayloadType = 2120
	PayloadTraderReq                PayloadType = 2121
	PayloadTraderRes                PayloadType = 2122
	PayloadTraderUpdatedEvent       PayloadType = 2123
	PayloadReconcileReq             PayloadType = 2124
	PayloadReconcileRes             PayloadType = 2125
	PayloadExecutionEvent           PayloadType = 2126
	PayloadSubscribeSpotsReq        PayloadType = 2127
	PayloadSubscribeSpotsRes        PayloadType = 2128
	PayloadSpotEvent                PayloadType = 2131
	PayloadOrderErrorEvent          PayloadType = 2132
	PayloadOAErrorRes               PayloadType = 2142
	PayloadAccountsTokenInvalidated PayloadType = 2147
	PayloadClientDisconnectEvent    PayloadType = 2148
	PayloadAccountDisconnectEvent   PayloadType = 2164
)

var payloadNames = map[PayloadType]string{
	PayloadErrorRes:                 "ERROR_RES",
	PayloadHeartbeatEvent:           "HEARTBEAT_EVENT",
	PayloadAppAuthReq:               "APPLICATION_AUTH_REQ",
	PayloadAppAuthRes:               "APPLICATION_AUTH_RES",
	PayloadAccountAuthReq:           "ACCOUNT_AUTH_REQ",
	PayloadAccountAuthRes:           "ACCOUNT_AUTH_RES",
	PayloadNewOrderReq:              "NEW_ORDER_REQ",
	PayloadClosePositionReq:         "CLOSE_POSITION_REQ",
	PayloadSymbolsListReq:           "SYMBOLS_LIST_REQ",
	PayloadSymbolsListRes:           "SYMBOLS_LIST_RES",
	PayloadSymbolByIDReq:            "SYMBOL_BY_ID_REQ",
	PayloadSymbolByIDRes:            "SYMBOL_BY_ID_RES",
	PayloadSymbolChangedEvent:       "SYMBOL_CHANGED_EVENT",
	PayloadTraderReq:                "TRADER_REQ",
	PayloadTraderRes:                "TRADER_RES",
	PayloadTraderUpdatedEvent:       "TRADER_UPDATE_EVENT",
	PayloadReconcileReq:             "RECONCILE_REQ",
	PayloadReconcileRes:             "RECONCILE_RES",
	PayloadExecutionEvent:           "EXECUTION_EVENT",
	PayloadSubscribeSpotsReq:        "SUBSCRIBE_SPOTS_REQ",
	PayloadSubscribeSpotsRes:        "SUBSCRIBE_SPOTS_RES",
	PayloadSpotEvent:                "SPOT_EVENT",
	PayloadOrderErrorEvent:          "ORDER_ERROR_EVENT",
	PayloadOAErrorRes:               "OA_ERROR_RES",
	PayloadAccountsTokenInvalidated: "ACCOUNTS_TOKEN_INVALIDATED_EVENT",
	PayloadClientDisconnectEvent:    "CLIENT_DISCONNECT_EVENT",
	PayloadAccountDisconnectEvent:   "ACCOUNT_DISCONNECT_EVENT",
}

func (p PayloadType) String() string {
	if name, ok := payloadNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PAYLOAD_%d", uint32(p))
}

// TradeSide es la dirección en el wire del broker.
type TradeSide int32

const (
	TradeSideBuy  TradeSide = 1
	TradeSideSell TradeSide = 2
)

// OrderType del broker. El gateway sólo emite órdenes de mercado.
type OrderType int32

const OrderTypeMarket OrderType = 1

// PositionStatus del broker.
type PositionStatus int32

const (
	PositionStatusOpen    PositionStatus = 1
	PositionStatusClosed  PositionStatus = 2
	PositionStatusCreated PositionStatus = 3
	PositionStatusError   PositionStatus = 4
)

// ExecutionType clasifica un ExecutionEvent.
type ExecutionType int32

const (
	ExecutionOrderAccepted       ExecutionType = 2
	ExecutionOrderFilled         ExecutionType = 3
	ExecutionOrderReplaced       ExecutionType = 4
	ExecutionOrderCancelled      ExecutionType = 5
	ExecutionOrderExpired        ExecutionType = 6
	ExecutionOrderRejected       ExecutionType = 7
	ExecutionOrderCancelRejected ExecutionType = 8
	ExecutionSwap                ExecutionType = 9
	ExecutionDepositWithdraw     ExecutionType = 10
	ExecutionOrderPartialFill    ExecutionType = 11
)

func (e ExecutionType) String() string {
	switch e {
	case ExecutionOrderAccepted:
		return "ORDER_ACCEPTED"
	case ExecutionOrderFilled:
		return "ORDER_FILLED"
	case ExecutionOrderReplaced:
		return "ORDER_REPLACED"
	case ExecutionOrderCancelled:
		return "ORDER_CANCELLED"
	case ExecutionOrderExpired:
		return "ORDER_EXPIRED"
	case ExecutionOrderRejected:
		return "ORDER_REJECTED"
	case ExecutionOrderCancelRejected:
		return "ORDER_CANCEL_REJECTED"
	case ExecutionSwap:
		return "SWAP"
	case ExecutionDepositWithdraw:
		return "DEPOSIT_WITHDRAW"
	case ExecutionOrderPartialFill:
		return "ORDER_PARTIAL_FILL"
	default:
		return fmt.Sprintf("EXECUTION_%d", int32(e))
	}
}
