package internal

import (
	"bufio"
	"context"
	"net"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xKoRx/hftgate/internal/repository"
	"github.com/xKoRx/hftgate/sdk/domain"
	"github.com/xKoRx/hftgate/sdk/engineproto"
	"github.com/xKoRx/hftgate/sdk/openapi"
	"github.com/xKoRx/hftgate/sdk/transport"
)

const (
	testAccountID = int64(44120)
	waitTimeout   = 5 * time.Second
)

// brokerConn es una sesión aceptada por el broker falso.
type brokerConn struct {
	index int
	conn  net.Conn
	mu    sync.Mutex
}

func (c *brokerConn) send(t *testing.T, msg openapi.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := transport.WriteFrame(c.conn, openapi.Encode(msg, "")); err != nil {
		t.Logf("fake broker write failed: %v", err)
	}
}

// fakeBroker responde el handshake completo; extra intercepta mensajes antes
// del responder por defecto y retorna true si ya los atendió.
type fakeBroker struct {
	t       *testing.T
	ln      net.Listener
	seed    []openapi.Position
	extra   func(c *brokerConn, msg openapi.Message) bool
	accepts atomic.Int32

	mu       sync.Mutex
	received []openapi.PayloadType
}

func newFakeBroker(t *testing.T, seed []openapi.Position) *fakeBroker {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	b := &fakeBroker{t: t, ln: ln, seed: seed}
	t.Cleanup(func() { _ = ln.Close() })
	go b.acceptLoop()
	return b
}

func (b *fakeBroker) dialer() transport.Dialer {
	addr := b.ln.Addr().String()
	return func(ctx context.Context) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, "tcp", addr)
	}
}

func (b *fakeBroker) acceptLoop() {
	for {
		conn, err := b.ln.Accept()
		if err != nil {
			return
		}
		c := &brokerConn{index: int(b.accepts.Add(1)), conn: conn}
		go b.serve(c)
	}
}

func (b *fakeBroker) serve(c *brokerConn) {
	defer c.conn.Close()
	r := bufio.NewReader(c.conn)
	for {
		frame, err := transport.ReadFrame(r, transport.DefaultMaxFrameSize)
		if err != nil {
			return
		}
		_, msg, err := openapi.Decode(frame)
		if err != nil {
			b.t.Logf("fake broker decode failed: %v", err)
			continue
		}
		b.mu.Lock()
		b.received = append(b.received, msg.PayloadType())
		b.mu.Unlock()

		if b.extra != nil && b.extra(c, msg) {
			continue
		}
		b.respond(c, msg)
	}
}

func (b *fakeBroker) respond(c *brokerConn, msg openapi.Message) {
	switch m := msg.(type) {
	case *openapi.AppAuthReq:
		c.send(b.t, &openapi.AppAuthRes{})
	case *openapi.AccountAuthReq:
		c.send(b.t, &openapi.AccountAuthRes{CtidTraderAccountID: m.CtidTraderAccountID})
	case *openapi.TraderReq:
		res := &openapi.TraderRes{}
		res.CtidTraderAccountID = testAccountID
		res.Trader = openapi.Trader{
			CtidTraderAccountID: testAccountID,
			Balance:             1000000,
			MoneyDigits:         2,
			BrokerName:          "Pepperstone",
			LeverageInCents:     10000,
		}
		c.send(b.t, res)
	case *openapi.SymbolsListReq:
		c.send(b.t, &openapi.SymbolsListRes{
			CtidTraderAccountID: testAccountID,
			Symbols: []openapi.LightSymbol{
				{SymbolID: 1, SymbolName: "EURUSD", Enabled: true},
				{SymbolID: 2, SymbolName: "GBPUSD", Enabled: true},
			},
		})
	case *openapi.SymbolByIDReq:
		c.send(b.t, &openapi.SymbolByIDRes{
			CtidTraderAccountID: testAccountID,
			Symbols: []openapi.Symbol{
				{SymbolID: 1, Digits: 5, MinVolume: 1000, MaxVolume: 10000000, StepVolume: 100},
			},
		})
	case *openapi.ReconcileReq:
		c.send(b.t, &openapi.ReconcileRes{CtidTraderAccountID: testAccountID, Positions: b.seed})
	case *openapi.SubscribeSpotsReq:
		c.send(b.t, &openapi.SubscribeSpotsRes{})
	}
}

func (b *fakeBroker) receivedTypes() []openapi.PayloadType {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]openapi.PayloadType(nil), b.received...)
}

// fakeEngine acepta una conexión y decodifica cada línea recibida.
type fakeEngine struct {
	t        *testing.T
	ln       net.Listener
	requests chan engineproto.Request

	mu   sync.Mutex
	conn net.Conn
}

func newFakeEngine(t *testing.T) *fakeEngine {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	e := &fakeEngine{t: t, ln: ln, requests: make(chan engineproto.Request, 64)}
	t.Cleanup(func() { _ = ln.Close() })
	go e.acceptLoop()
	return e
}

func (e *fakeEngine) address() string { return "tcp://" + e.ln.Addr().String() }

func (e *fakeEngine) acceptLoop() {
	for {
		conn, err := e.ln.Accept()
		if err != nil {
			return
		}
		e.mu.Lock()
		e.conn = conn
		e.mu.Unlock()
		go e.read(conn)
	}
}

func (e *fakeEngine) read(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		req, err := engineproto.DecodeRequest(scanner.Bytes())
		if err != nil {
			e.t.Logf("fake engine decode failed: %v", err)
			continue
		}
		e.requests <- req
	}
}

func (e *fakeEngine) write(resp engineproto.Response) {
	line, err := engineproto.EncodeResponse(resp)
	require.NoError(e.t, err)
	e.mu.Lock()
	defer e.mu.Unlock()
	require.NotNil(e.t, e.conn)
	_, err = e.conn.Write(line)
	require.NoError(e.t, err)
}

func (e *fakeEngine) next(t *testing.T) engineproto.Request {
	t.Helper()
	select {
	case req := <-e.requests:
		return req
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for engine request")
		return nil
	}
}

type recordingHealth struct {
	mu      sync.Mutex
	history []bool
}

func (h *recordingHealth) SetServing(serving bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.history = append(h.history, serving)
}

func (h *recordingHealth) serving() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.history) > 0 && h.history[len(h.history)-1]
}

func testConfig(engineAddress string) *Config {
	cfg := DefaultConfig()
	cfg.ClientID = "app-1"
	cfg.ClientSecret = "secret"
	cfg.AccessToken = "token"
	cfg.AccountID = testAccountID
	cfg.BrokerAddress = "broker.test:5035"
	cfg.EngineAddress = engineAddress
	cfg.SessionID = "test-session"
	cfg.Instruments = []string{"EURUSD"}
	return cfg
}

// runGateway arranca el gateway en background y retorna el canal con su resultado.
func runGateway(t *testing.T, gw *Gateway) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gw.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

func waitResult(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(waitTimeout):
		t.Fatal("gateway did not stop")
		return nil
	}
}

func TestGatewayBootstrapAndRelay(t *testing.T) {
	seed := []openapi.Position{{
		PositionID: 9,
		TradeData: openapi.TradeData{
			SymbolID:      1,
			Volume:        1000,
			TradeSide:     openapi.TradeSideBuy,
			OpenTimestamp: 1700000000000,
			Label:         "hft_9",
		},
		PositionStatus: openapi.PositionStatusOpen,
		Price:          1.0851,
		UsedMargin:     5000,
		MoneyDigits:    2,
	}}
	broker := newFakeBroker(t, seed)
	engine := newFakeEngine(t)

	spots := make(chan struct{})
	orders := make(chan *openapi.NewOrderReq, 1)
	broker.extra = func(c *brokerConn, msg openapi.Message) bool {
		switch m := msg.(type) {
		case *openapi.SubscribeSpotsReq:
			c.send(t, &openapi.SubscribeSpotsRes{})
			go func() {
				<-spots
				c.send(t, &openapi.SpotEvent{CtidTraderAccountID: testAccountID, SymbolID: 1, Bid: 108500})
				c.send(t, &openapi.SpotEvent{CtidTraderAccountID: testAccountID, SymbolID: 1, Ask: 108520})
			}()
			return true
		case *openapi.NewOrderReq:
			orders <- m
			td := openapi.TradeData{
				SymbolID:      m.SymbolID,
				Volume:        m.Volume,
				TradeSide:     m.TradeSide,
				OpenTimestamp: 1700000100000,
				Label:         m.Label,
			}
			order := &openapi.Order{OrderID: 501, TradeData: td, PositionID: 10}
			c.send(t, &openapi.ExecutionEvent{
				CtidTraderAccountID: testAccountID,
				ExecutionType:       openapi.ExecutionOrderAccepted,
				Order:               order,
			})
			c.send(t, &openapi.ExecutionEvent{
				CtidTraderAccountID: testAccountID,
				ExecutionType:       openapi.ExecutionOrderFilled,
				Order:               order,
				Position: &openapi.Position{
					PositionID:     10,
					TradeData:      td,
					PositionStatus: openapi.PositionStatusOpen,
					Price:          1.0852,
					UsedMargin:     5000,
					MoneyDigits:    2,
				},
			})
			return true
		}
		return false
	}

	ledger := openTestLedger(t)
	journal, err := repository.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer journal.Close()
	health := &recordingHealth{}

	gw, err := New(testConfig(engine.address()), nil,
		WithBrokerDialer(broker.dialer()),
		WithLedger(ledger),
		WithJournal(journal),
		WithHealth(health),
	)
	require.NoError(t, err)
	cancel, done := runGateway(t, gw)

	initReq, ok := engine.next(t).(engineproto.Init)
	require.True(t, ok, "first request must be init")
	assert.Equal(t, "test-session", initReq.SessID)
	assert.Equal(t, []string{"EURUSD"}, initReq.Instruments)

	syncReq, ok := engine.next(t).(engineproto.Sync)
	require.True(t, ok, "seeded labelled position must be synced")
	assert.Equal(t, "hft_9", syncReq.ID)
	assert.Equal(t, "EURUSD", syncReq.Instrument)
	assert.Equal(t, domain.TradeSideLong, syncReq.Direction)
	assert.Equal(t, int64(1000), syncReq.Qty)
	assert.InDelta(t, 1.0851, syncReq.Price, 1e-9)
	assert.True(t, health.serving())

	// Sólo el segundo spot completa ask y bid
	close(spots)
	tick, ok := engine.next(t).(engineproto.Tick)
	require.True(t, ok, "expected a tick")
	assert.Equal(t, "EURUSD", tick.Instrument)
	assert.InDelta(t, 1.0852, tick.Ask, 1e-9)
	assert.InDelta(t, 1.085, tick.Bid, 1e-9)
	assert.Greater(t, tick.Equity, 0.0)

	engine.write(engineproto.Advice("EURUSD", engineproto.Operation{Op: engineproto.OpLong, ID: "hft_10", Qty: 1050}))

	select {
	case order := <-orders:
		assert.Equal(t, int64(1000), order.Volume, "volume truncated to step")
		assert.Equal(t, "hft_10", order.Label)
		assert.Equal(t, openapi.TradeSideBuy, order.TradeSide)
		assert.Equal(t, testAccountID, order.CtidTraderAccountID)
	case <-time.After(waitTimeout):
		t.Fatal("order not received by broker")
	}

	notify, ok := engine.next(t).(engineproto.OpenNotify)
	require.True(t, ok, "expected open_notify")
	assert.Equal(t, "hft_10", notify.ID)
	assert.Equal(t, "EURUSD", notify.Instrument)
	assert.Equal(t, engineproto.NotifyOK, notify.Status)
	assert.InDelta(t, 1.0852, notify.Price, 1e-9)

	cancel()
	require.NoError(t, waitResult(t, done))
	assert.False(t, health.serving(), "shutdown reports not serving")

	types := broker.receivedTypes()
	require.GreaterOrEqual(t, len(types), 6)
	assert.Equal(t, []openapi.PayloadType{
		openapi.PayloadAppAuthReq,
		openapi.PayloadAccountAuthReq,
		openapi.PayloadTraderReq,
		openapi.PayloadSymbolsListReq,
		openapi.PayloadSymbolByIDReq,
		openapi.PayloadReconcileReq,
	}, types[:6])

	rec, err := ledger.Get("hft_10")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, AdviceOpen, rec.State)
	assert.Equal(t, int64(10), rec.PositionID)

	synced, err := ledger.Get("hft_9")
	require.NoError(t, err)
	require.NotNil(t, synced)
	assert.Equal(t, AdviceOpen, synced.State)

	balance, found, err := journal.LatestBalance(context.Background(), testAccountID)
	require.NoError(t, err)
	require.True(t, found, "bootstrap records a balance snapshot")
	assert.Equal(t, "10000", balance.String())
}

func TestGatewayServerDisconnectIsFatal(t *testing.T) {
	broker := newFakeBroker(t, nil)
	engine := newFakeEngine(t)
	broker.extra = func(c *brokerConn, msg openapi.Message) bool {
		if _, ok := msg.(*openapi.SubscribeSpotsReq); ok {
			c.send(t, &openapi.ClientDisconnectEvent{Reason: "maintenance"})
			return true
		}
		return false
	}

	gw, err := New(testConfig(engine.address()), nil, WithBrokerDialer(broker.dialer()))
	require.NoError(t, err)
	_, done := runGateway(t, gw)

	err = waitResult(t, done)
	require.Error(t, err)
	assert.True(t, domain.IsFatalError(err))
	assert.Equal(t, domain.ErrServerDisconnect, domain.CodeOf(err))
}

func TestGatewayHandshakeRejected(t *testing.T) {
	broker := newFakeBroker(t, nil)
	engine := newFakeEngine(t)
	broker.extra = func(c *brokerConn, msg openapi.Message) bool {
		if _, ok := msg.(*openapi.AppAuthReq); ok {
			c.send(t, &openapi.ErrorRes{ErrorCode: "CH_CLIENT_AUTH_FAILURE", Description: "bad secret"})
			return true
		}
		return false
	}

	gw, err := New(testConfig(engine.address()), nil, WithBrokerDialer(broker.dialer()))
	require.NoError(t, err)
	_, done := runGateway(t, gw)

	err = waitResult(t, done)
	require.Error(t, err)
	assert.Equal(t, domain.ErrHandshakeRejected, domain.CodeOf(err))
}

func TestGatewayStageTimeoutRecyclesBroker(t *testing.T) {
	broker := newFakeBroker(t, nil)
	engine := newFakeEngine(t)
	// La primera sesión nunca responde APP_AUTH
	broker.extra = func(c *brokerConn, msg openapi.Message) bool {
		_, isAuth := msg.(*openapi.AppAuthReq)
		return isAuth && c.index == 1
	}

	cfg := testConfig(engine.address())
	cfg.StageTimeout = 100 * time.Millisecond
	health := &recordingHealth{}

	gw, err := New(cfg, nil,
		WithBrokerDialer(broker.dialer()),
		WithBrokerPolicy(&backoff.ZeroBackOff{}),
		WithHealth(health),
	)
	require.NoError(t, err)
	cancel, done := runGateway(t, gw)

	require.Eventually(t, health.serving, waitTimeout, 10*time.Millisecond)
	assert.GreaterOrEqual(t, broker.accepts.Load(), int32(2))

	cancel()
	require.NoError(t, waitResult(t, done))
}

func TestGatewayEngineUnreachableIsFatal(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	broker := newFakeBroker(t, nil)
	cfg := testConfig("tcp://" + addr)

	gw, err := New(cfg, nil,
		WithBrokerDialer(broker.dialer()),
		WithEnginePolicy(backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)),
	)
	require.NoError(t, err)
	_, done := runGateway(t, gw)

	err = waitResult(t, done)
	require.Error(t, err)
	assert.Equal(t, domain.ErrEngineUnreachable, domain.CodeOf(err))
}

func TestNewRejectsUnknownStrategy(t *testing.T) {
	engine := newFakeEngine(t)
	cfg := testConfig(engine.address())
	cfg.Strategy = "grid"

	_, err := New(cfg, nil)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}
