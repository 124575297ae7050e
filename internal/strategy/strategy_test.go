package strategy

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xKoRx/hftgate/internal/reconciler"
	"github.com/xKoRx/hftgate/sdk/domain"
	"github.com/xKoRx/hftgate/sdk/engineproto"
)

type fakeEngine struct {
	sent []engineproto.Request
	err  error
}

func (e *fakeEngine) SendEngine(req engineproto.Request) error {
	if e.err != nil {
		return e.err
	}
	e.sent = append(e.sent, req)
	return nil
}

type order struct {
	ticker string
	side   domain.TradeSide
	volume int64
	label  string
}

type fakeBroker struct {
	owned    []domain.Position
	orders   []order
	closed   []string
	orderErr error
}

func (b *fakeBroker) CreateMarketOrderEx(ticker string, side domain.TradeSide, volume int64, label string) (int64, error) {
	if b.orderErr != nil {
		return 0, b.orderErr
	}
	b.orders = append(b.orders, order{ticker, side, volume, label})
	return volume, nil
}

func (b *fakeBroker) ClosePositionByLabel(label string) (domain.Position, error) {
	for _, p := range b.owned {
		if p.Label == label {
			b.closed = append(b.closed, label)
			return p, nil
		}
	}
	return domain.Position{}, fmt.Errorf("%w: label %s", reconciler.ErrUnknownPosition, label)
}

func (b *fakeBroker) OwnedPositions() []domain.Position { return b.owned }
func (b *fakeBroker) Equity() decimal.Decimal           { return decimal.RequireFromString("10234.5") }
func (b *fakeBroker) FreeMargin() decimal.Decimal       { return decimal.RequireFromString("9800.1") }

type memoryLedger struct {
	states map[string]string
}

func newMemoryLedger() *memoryLedger { return &memoryLedger{states: map[string]string{}} }

func (l *memoryLedger) Reserve(label, _ string, _ domain.TradeSide, _ int64) error {
	switch l.states[label] {
	case "pending", "open":
		return domain.NewError(domain.ErrDuplicateAdvice, "advice already active")
	}
	l.states[label] = "pending"
	return nil
}

func (l *memoryLedger) MarkOpen(label string, _ int64, _ decimal.Decimal) error {
	l.states[label] = "open"
	return nil
}

func (l *memoryLedger) MarkClosed(label string, _ decimal.Decimal) error {
	l.states[label] = "closed"
	return nil
}

func (l *memoryLedger) MarkFailed(label, _ string) error {
	l.states[label] = "failed"
	return nil
}

func ownedPosition() domain.Position {
	return domain.Position{
		PositionID:     501,
		Label:          "hft_1",
		InstrumentID:   1,
		Instrument:     "EURUSD",
		Side:           domain.TradeSideLong,
		Volume:         1000,
		OpenTimestamp:  1709294400123,
		ExecutionPrice: decimal.RequireFromString("1.0851"),
	}
}

func newTestRelay(t *testing.T) (*Relay, *fakeEngine, *fakeBroker, *memoryLedger) {
	t.Helper()
	engine := &fakeEngine{}
	broker := &fakeBroker{}
	ledger := newMemoryLedger()
	r := NewRelay(Deps{
		SessionID:   "icmarkets-session",
		Instruments: []string{"EURUSD", "GBPUSD"},
		Engine:      engine,
		Broker:      broker,
		Ledger:      ledger,
	})
	return r, engine, broker, ledger
}

func TestNewVariants(t *testing.T) {
	s, err := New("relay", Deps{})
	require.NoError(t, err)
	assert.Equal(t, VariantRelay, s.Name())

	s, err = New(" PASSIVE ", Deps{})
	require.NoError(t, err)
	assert.Equal(t, VariantPassive, s.Name())

	_, err = New("martingale", Deps{})
	assert.ErrorIs(t, err, ErrUnknownVariant)
	assert.Equal(t, []string{"passive", "relay"}, Variants())
}

func TestRelayInitThenSyncOnBootstrap(t *testing.T) {
	r, engine, broker, ledger := newTestRelay(t)
	broker.owned = []domain.Position{ownedPosition()}

	r.OnEngineConnected()
	require.Len(t, engine.sent, 1)
	assert.Equal(t, engineproto.Init{SessID: "icmarkets-session", Instruments: []string{"EURUSD", "GBPUSD"}}, engine.sent[0])

	r.OnBootstrapComplete()
	require.Len(t, engine.sent, 2)
	sync, ok := engine.sent[1].(engineproto.Sync)
	require.True(t, ok)
	assert.Equal(t, "hft_1", sync.ID)
	assert.Equal(t, domain.TradeSideLong, sync.Direction)
	assert.Equal(t, int64(1000), sync.Qty)
	assert.InDelta(t, 1.0851, sync.Price, 1e-9)
	assert.Equal(t, int64(1709294400123), sync.Timestamp.UnixMilli())
	assert.Equal(t, "open", ledger.states["hft_1"])
}

func TestRelaySyncOnEngineReconnect(t *testing.T) {
	r, engine, broker, _ := newTestRelay(t)
	broker.owned = []domain.Position{ownedPosition()}

	r.OnBootstrapComplete()
	assert.Empty(t, engine.sent, "nothing is sent before the engine connects")

	r.OnEngineConnected()
	require.Len(t, engine.sent, 2)
	assert.IsType(t, engineproto.Init{}, engine.sent[0])
	assert.IsType(t, engineproto.Sync{}, engine.sent[1])

	r.OnEngineLost()
	r.OnBrokerLost()
	r.OnEngineConnected()
	require.Len(t, engine.sent, 3, "no sync while the broker is not operational")
}

func TestRelayForwardsTicksWithAccountState(t *testing.T) {
	r, engine, _, _ := newTestRelay(t)
	tick := domain.Tick{
		Instrument: "EURUSD",
		Ask:        decimal.RequireFromString("1.0851"),
		Bid:        decimal.RequireFromString("1.0849"),
		Timestamp:  time.Date(2024, 3, 1, 12, 0, 0, 123e6, time.UTC),
	}

	r.OnTick(tick)
	assert.Empty(t, engine.sent)

	r.OnEngineConnected()
	r.OnTick(tick)
	require.Len(t, engine.sent, 2)
	assert.Equal(t, engineproto.Tick{
		Instrument: "EURUSD",
		Timestamp:  tick.Timestamp,
		Ask:        1.0851,
		Bid:        1.0849,
		Equity:     10234.5,
		FreeMargin: 9800.1,
	}, engine.sent[1])
}

func TestRelayExecutesAdvice(t *testing.T) {
	r, engine, broker, ledger := newTestRelay(t)
	broker.owned = []domain.Position{ownedPosition()}

	r.OnEngineAdvice(engineproto.Advice("EURUSD",
		engineproto.Operation{Op: engineproto.OpShort, ID: "hft_2", Qty: 2000},
		engineproto.Operation{Op: engineproto.OpClose, ID: "hft_1"},
	), true)

	require.Len(t, broker.orders, 1)
	assert.Equal(t, order{"EURUSD", domain.TradeSideShort, 2000, "hft_2"}, broker.orders[0])
	assert.Equal(t, []string{"hft_1"}, broker.closed)
	assert.Equal(t, "pending", ledger.states["hft_2"])
	assert.Empty(t, engine.sent, "notifications wait for the broker events")
}

func TestRelayRefusesWhenBrokerNotReady(t *testing.T) {
	r, engine, broker, _ := newTestRelay(t)

	r.OnEngineAdvice(engineproto.Advice("EURUSD",
		engineproto.Operation{Op: engineproto.OpLong, ID: "hft_3", Qty: 1000},
		engineproto.Operation{Op: engineproto.OpClose, ID: "hft_1"},
	), false)

	assert.Empty(t, broker.orders)
	assert.Empty(t, broker.closed)
	require.Len(t, engine.sent, 2)
	open := engine.sent[0].(engineproto.OpenNotify)
	assert.Equal(t, "hft_3", open.ID)
	assert.True(t, open.Failed())
	closeNotify := engine.sent[1].(engineproto.CloseNotify)
	assert.Equal(t, "hft_1", closeNotify.ID)
	assert.Equal(t, engineproto.NotifyError, closeNotify.Status)
}

func TestRelayRefusesDuplicateAdvice(t *testing.T) {
	r, engine, broker, _ := newTestRelay(t)
	advice := engineproto.Advice("EURUSD", engineproto.Operation{Op: engineproto.OpLong, ID: "hft_4", Qty: 1000})

	r.OnEngineAdvice(advice, true)
	r.OnEngineAdvice(advice, true)

	assert.Len(t, broker.orders, 1)
	require.Len(t, engine.sent, 1)
	assert.Equal(t, engineproto.NotifyError, engine.sent[0].(engineproto.OpenNotify).Status)
}

func TestRelayOrderFailureNotifiesAndMarksLedger(t *testing.T) {
	r, engine, broker, ledger := newTestRelay(t)
	broker.orderErr = reconciler.ErrVolumeOutOfRange

	r.OnEngineAdvice(engineproto.Advice("EURUSD", engineproto.Operation{Op: engineproto.OpLong, ID: "hft_5", Qty: 900}), true)
	require.Len(t, engine.sent, 1)
	assert.True(t, engine.sent[0].(engineproto.OpenNotify).Failed())
	assert.Equal(t, "failed", ledger.states["hft_5"])

	// un id fallido puede reintentarse
	broker.orderErr = nil
	r.OnEngineAdvice(engineproto.Advice("EURUSD", engineproto.Operation{Op: engineproto.OpLong, ID: "hft_5", Qty: 1000}), true)
	assert.Len(t, broker.orders, 1)
}

func TestRelayCloseUnknownLabel(t *testing.T) {
	r, engine, _, _ := newTestRelay(t)
	r.OnEngineAdvice(engineproto.Advice("EURUSD", engineproto.Operation{Op: engineproto.OpClose, ID: "ghost"}), true)
	require.Len(t, engine.sent, 1)
	assert.Equal(t, engineproto.CloseNotify{Notification: engineproto.Notification{
		Instrument: "EURUSD", ID: "ghost", Status: engineproto.NotifyError,
	}}, engine.sent[0])
}

func TestRelayPositionNotifications(t *testing.T) {
	r, engine, _, ledger := newTestRelay(t)
	pos := ownedPosition()

	r.OnPositionOpen(pos)
	r.OnPositionClose(domain.ClosedPositionInfo{
		PositionID: 501, Label: "hft_1", Instrument: "EURUSD",
		ClosePrice: decimal.RequireFromString("1.0861"),
	})
	r.OnPositionOpenError(domain.OrderErrorInfo{Label: "hft_6", Instrument: "EURUSD", ErrorCode: "NOT_ENOUGH_MONEY"})
	r.OnPositionCloseError(domain.OrderErrorInfo{Label: "hft_7", Instrument: "EURUSD", ErrorCode: "MARKET_CLOSED"})

	foreign := pos
	foreign.Label = ""
	r.OnPositionOpen(foreign)

	require.Len(t, engine.sent, 4)
	assert.Equal(t, engineproto.OpenNotify{Notification: engineproto.Notification{
		Instrument: "EURUSD", ID: "hft_1", Status: engineproto.NotifyOK, Price: 1.0851,
	}}, engine.sent[0])
	assert.Equal(t, engineproto.CloseNotify{Notification: engineproto.Notification{
		Instrument: "EURUSD", ID: "hft_1", Status: engineproto.NotifyOK, Price: 1.0861,
	}}, engine.sent[1])
	assert.True(t, engine.sent[2].(engineproto.OpenNotify).Failed())
	assert.True(t, engine.sent[3].(engineproto.CloseNotify).Failed())

	assert.Equal(t, "closed", ledger.states["hft_1"])
	assert.Equal(t, "failed", ledger.states["hft_6"])
}

func TestRelayDropsRequestsWhenEngineSendFails(t *testing.T) {
	r, engine, _, _ := newTestRelay(t)
	engine.err = errors.New("not connected")
	assert.NotPanics(t, func() { r.OnEngineConnected() })
	assert.Empty(t, engine.sent)
}

func TestPassiveNeverTrades(t *testing.T) {
	engine := &fakeEngine{}
	broker := &fakeBroker{owned: []domain.Position{ownedPosition()}}
	p := NewPassive(Deps{Engine: engine, Broker: broker})

	p.OnEngineAdvice(engineproto.Advice("EURUSD",
		engineproto.Operation{Op: engineproto.OpLong, ID: "hft_8", Qty: 1000},
		engineproto.Operation{Op: engineproto.OpClose, ID: "hft_1"},
	), true)

	assert.Empty(t, broker.orders)
	assert.Empty(t, broker.closed)
	require.Len(t, engine.sent, 2)
	assert.True(t, engine.sent[0].(engineproto.OpenNotify).Failed())
	assert.True(t, engine.sent[1].(engineproto.CloseNotify).Failed())

	var s Strategy = p
	assert.Equal(t, VariantPassive, s.Name())
}
