package openapi

// Trader es ProtoOATrader (subconjunto usado por el gateway).
type Trader struct {
	CtidTraderAccountID   int64
	Balance               int64
	LeverageInCents       uint32
	BrokerName            string
	RegistrationTimestamp int64
	MoneyDigits           uint32
}

func (m *Trader) MarshalPayload() []byte {
	var b []byte
	b = appendInt64(b, 1, m.CtidTraderAccountID)
	b = appendInt64(b, 2, m.Balance)
	if m.LeverageInCents != 0 {
		b = appendUvarint(b, 10, uint64(m.LeverageInCents))
	}
	b = appendOptString(b, 16, m.BrokerName)
	b = appendOptInt64(b, 17, m.RegistrationTimestamp)
	if m.MoneyDigits != 0 {
		b = appendUvarint(b, 20, uint64(m.MoneyDigits))
	}
	return b
}

func (m *Trader) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.int64(&m.CtidTraderAccountID)
		case 2:
			return f.int64(&m.Balance)
		case 10:
			return f.uint32(&m.LeverageInCents)
		case 16:
			return f.string(&m.BrokerName)
		case 17:
			return f.int64(&m.RegistrationTimestamp)
		case 20:
			return f.uint32(&m.MoneyDigits)
		}
		return nil
	})
}

// LightSymbol es ProtoOALightSymbol.
type LightSymbol struct {
	SymbolID   int64
	SymbolName string
	Enabled    bool
}

func (m *LightSymbol) MarshalPayload() []byte {
	var b []byte
	b = appendInt64(b, 1, m.SymbolID)
	b = appendOptString(b, 2, m.SymbolName)
	b = appendBool(b, 3, m.Enabled)
	return b
}

func (m *LightSymbol) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.int64(&m.SymbolID)
		case 2:
			return f.string(&m.SymbolName)
		case 3:
			return f.bool(&m.Enabled)
		}
		return nil
	})
}

// Symbol es ProtoOASymbol: especificación de volumen del instrumento.
type Symbol struct {
	SymbolID   int64
	Digits     int32
	MaxVolume  int64
	MinVolume  int64
	StepVolume int64
}

func (m *Symbol) MarshalPayload() []byte {
	var b []byte
	b = appendInt64(b, 1, m.SymbolID)
	b = appendInt64(b, 2, int64(m.Digits))
	b = appendOptInt64(b, 9, m.MaxVolume)
	b = appendOptInt64(b, 10, m.MinVolume)
	b = appendOptInt64(b, 11, m.StepVolume)
	return b
}

func (m *Symbol) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.int64(&m.SymbolID)
		case 2:
			return f.int32(&m.Digits)
		case 9:
			return f.int64(&m.MaxVolume)
		case 10:
			return f.int64(&m.MinVolume)
		case 11:
			return f.int64(&m.StepVolume)
		}
		return nil
	})
}

// TradeData es ProtoOATradeData.
type TradeData struct {
	SymbolID       int64
	Volume         int64
	TradeSide      TradeSide
	OpenTimestamp  int64
	Label          string
	CloseTimestamp int64
}

func (m *TradeData) MarshalPayload() []byte {
	var b []byte
	b = appendInt64(b, 1, m.SymbolID)
	b = appendInt64(b, 2, m.Volume)
	b = appendInt64(b, 3, int64(m.TradeSide))
	b = appendOptInt64(b, 4, m.OpenTimestamp)
	b = appendOptString(b, 5, m.Label)
	b = appendOptInt64(b, 9, m.CloseTimestamp)
	return b
}

func (m *TradeData) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.int64(&m.SymbolID)
		case 2:
			return f.int64(&m.Volume)
		case 3:
			return f.int32((*int32)(&m.TradeSide))
		case 4:
			return f.int64(&m.OpenTimestamp)
		case 5:
			return f.string(&m.Label)
		case 9:
			return f.int64(&m.CloseTimestamp)
		}
		return nil
	})
}

// Position es ProtoOAPosition. Price es double en el wire; los montos son
// enteros escalados por MoneyDigits.
type Position struct {
	PositionID     int64
	TradeData      TradeData
	PositionStatus PositionStatus
	Swap           int64
	Price          float64
	Commission     int64
	UsedMargin     uint64
	MoneyDigits    uint32
}

func (m *Position) MarshalPayload() []byte {
	var b []byte
	b = appendInt64(b, 1, m.PositionID)
	b = appendMessage(b, 2, &m.TradeData)
	b = appendInt64(b, 3, int64(m.PositionStatus))
	b = appendInt64(b, 4, m.Swap)
	b = appendOptDouble(b, 5, m.Price)
	b = appendInt64(b, 9, m.Commission)
	if m.UsedMargin != 0 {
		b = appendUvarint(b, 13, m.UsedMargin)
	}
	if m.MoneyDigits != 0 {
		b = appendUvarint(b, 15, uint64(m.MoneyDigits))
	}
	return b
}

func (m *Position) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.int64(&m.PositionID)
		case 2:
			return f.message(&m.TradeData)
		case 3:
			return f.int32((*int32)(&m.PositionStatus))
		case 4:
			return f.int64(&m.Swap)
		case 5:
			return f.double(&m.Price)
		case 9:
			return f.int64(&m.Commission)
		case 13:
			return f.uint64(&m.UsedMargin)
		case 15:
			return f.uint32(&m.MoneyDigits)
		}
		return nil
	})
}

// Order es ProtoOAOrder (subconjunto).
type Order struct {
	OrderID      int64
	TradeData    TradeData
	ClosingOrder bool
	PositionID   int64
}

func (m *Order) MarshalPayload() []byte {
	var b []byte
	b = appendInt64(b, 1, m.OrderID)
	b = appendMessage(b, 2, &m.TradeData)
	if m.ClosingOrder {
		b = appendBool(b, 12, true)
	}
	b = appendOptInt64(b, 19, m.PositionID)
	return b
}

func (m *Order) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.int64(&m.OrderID)
		case 2:
			return f.message(&m.TradeData)
		case 12:
			return f.bool(&m.ClosingOrder)
		case 19:
			return f.int64(&m.PositionID)
		}
		return nil
	})
}

// ClosePositionDetail es ProtoOAClosePositionDetail.
type ClosePositionDetail struct {
	EntryPrice   float64
	GrossProfit  int64
	Swap         int64
	Commission   int64
	Balance      int64
	ClosedVolume int64
	MoneyDigits  uint32
}

func (m *ClosePositionDetail) MarshalPayload() []byte {
	var b []byte
	b = appendDouble(b, 1, m.EntryPrice)
	b = appendInt64(b, 2, m.GrossProfit)
	b = appendInt64(b, 3, m.Swap)
	b = appendInt64(b, 4, m.Commission)
	b = appendInt64(b, 5, m.Balance)
	b = appendOptInt64(b, 7, m.ClosedVolume)
	if m.MoneyDigits != 0 {
		b = appendUvarint(b, 9, uint64(m.MoneyDigits))
	}
	return b
}

func (m *ClosePositionDetail) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.double(&m.EntryPrice)
		case 2:
			return f.int64(&m.GrossProfit)
		case 3:
			return f.int64(&m.Swap)
		case 4:
			return f.int64(&m.Commission)
		case 5:
			return f.int64(&m.Balance)
		case 7:
			return f.int64(&m.ClosedVolume)
		case 9:
			return f.uint32(&m.MoneyDigits)
		}
		return nil
	})
}

// Deal es ProtoOADeal.
type Deal struct {
	DealID              int64
	OrderID             int64
	PositionID          int64
	Volume              int64
	FilledVolume        int64
	SymbolID            int64
	ExecutionTimestamp  int64
	ExecutionPrice      float64
	TradeSide           TradeSide
	Commission          int64
	ClosePositionDetail *ClosePositionDetail
	MoneyDigits         uint32
}

func (m *Deal) MarshalPayload() []byte {
	var b []byte
	b = appendInt64(b, 1, m.DealID)
	b = appendInt64(b, 2, m.OrderID)
	b = appendInt64(b, 3, m.PositionID)
	b = appendInt64(b, 4, m.Volume)
	b = appendInt64(b, 5, m.FilledVolume)
	b = appendInt64(b, 6, m.SymbolID)
	b = appendOptInt64(b, 8, m.ExecutionTimestamp)
	b = appendOptDouble(b, 10, m.ExecutionPrice)
	b = appendInt64(b, 11, int64(m.TradeSide))
	b = appendOptInt64(b, 14, m.Commission)
	if m.ClosePositionDetail != nil {
		b = appendMessage(b, 16, m.ClosePositionDetail)
	}
	if m.MoneyDigits != 0 {
		b = appendUvarint(b, 17, uint64(m.MoneyDigits))
	}
	return b
}

func (m *Deal) UnmarshalPayload(b []byte) error {
	return rangeFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.int64(&m.DealID)
		case 2:
			return f.int64(&m.OrderID)
		case 3:
			return f.int64(&m.PositionID)
		case 4:
			return f.int64(&m.Volume)
		case 5:
			return f.int64(&m.FilledVolume)
		case 6:
			return f.int64(&m.SymbolID)
		case 8:
			return f.int64(&m.ExecutionTimestamp)
		case 10:
			return f.double(&m.ExecutionPrice)
		case 11:
			return f.int32((*int32)(&m.TradeSide))
		case 14:
			return f.int64(&m.Commission)
		case 16:
			m.ClosePositionDetail = &ClosePositionDetail{}
			return f.message(m.ClosePositionDetail)
		case 17:
			return f.uint32(&m.MoneyDigits)
		}
		return nil
	})
}

