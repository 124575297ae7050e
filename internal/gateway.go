// Package internal contiene el gateway: el event loop que une la sesión con
// el broker, el enlace con el engine y la estrategia configurada.
//
// Toda la lógica de dominio corre en una única goroutine (Run). Los
// transportes sólo publican eventos en canales; reconciler, estrategia,
// ledger y journal se invocan siempre desde el loop.
package internal

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/trace"

	"github.com/xKoRx/hftgate/internal/bootstrap"
	"github.com/xKoRx/hftgate/internal/reconciler"
	"github.com/xKoRx/hftgate/internal/repository"
	"github.com/xKoRx/hftgate/internal/strategy"
	"github.com/xKoRx/hftgate/sdk/domain"
	"github.com/xKoRx/hftgate/sdk/telemetry"
	"github.com/xKoRx/hftgate/sdk/telemetry/metricbundle"
	"github.com/xKoRx/hftgate/sdk/telemetry/semconv"
	"github.com/xKoRx/hftgate/sdk/transport"
)

const (
	eventQueueSize     = 256
	heartbeatCheckFreq = time.Second
)

// link es la parte de un transporte que usa el gateway.
type link interface {
	Start(ctx context.Context) error
	Send(payload []byte) error
	Recycle()
	Close() error
}

// HealthReporter publica si el gateway puede operar.
type HealthReporter interface {
	SetServing(serving bool)
}

// Gateway orquesta broker, engine y estrategia.
//
// Responsabilidades:
//   - Bootstrap de la sesión con el broker (máquina de estados)
//   - Heartbeats y timeout por etapa del handshake
//   - Dispatch de eventos del broker al reconciler
//   - Decodificación de respuestas del engine hacia la estrategia
type Gateway struct {
	// Config
	config *Config
	now    func() time.Time

	// Telemetría
	telemetry *telemetry.Client
	metrics   *metricbundle.GatewayMetrics
	ctx       context.Context

	// Transportes
	brokerEvents chan transport.Event
	engineEvents chan transport.Event
	broker       link
	engine       link

	// Dominio
	state    bootstrap.State
	rec      *reconciler.Reconciler
	strategy strategy.Strategy
	journal  *journalListener
	health   HealthReporter

	// Handshake
	stageTimer *time.Timer
	stageC     <-chan time.Time
	stageStart time.Time
	stageSpan  trace.Span

	lastHeartbeat time.Time
	bootstraps    int
}

type gatewayOptions struct {
	brokerDialer transport.Dialer
	engineDialer transport.Dialer
	brokerPolicy backoff.BackOff
	enginePolicy backoff.BackOff
	ledger       *AdviceLedger
	journal      *repository.Journal
	health       HealthReporter
	now          func() time.Time
}

// Option configura un Gateway.
type Option func(*gatewayOptions)

// WithBrokerDialer reemplaza el dialer TLS del broker.
func WithBrokerDialer(d transport.Dialer) Option {
	return func(o *gatewayOptions) { o.brokerDialer = d }
}

// WithEngineDialer reemplaza el dialer derivado de engine_address.
func WithEngineDialer(d transport.Dialer) Option {
	return func(o *gatewayOptions) { o.engineDialer = d }
}

// WithBrokerPolicy reemplaza la política de reconexión del broker.
func WithBrokerPolicy(p backoff.BackOff) Option {
	return func(o *gatewayOptions) { o.brokerPolicy = p }
}

// WithEnginePolicy reemplaza la política de reconexión del engine.
func WithEnginePolicy(p backoff.BackOff) Option {
	return func(o *gatewayOptions) { o.enginePolicy = p }
}

// WithLedger persiste el ciclo de vida de los advices.
func WithLedger(l *AdviceLedger) Option {
	return func(o *gatewayOptions) { o.ledger = l }
}

// WithJournal registra cierres, rechazos y balances.
func WithJournal(j *repository.Journal) Option {
	return func(o *gatewayOptions) { o.journal = j }
}

// WithHealth publica el estado OPERATIONAL en un health check.
func WithHealth(h HealthReporter) Option {
	return func(o *gatewayOptions) { o.health = h }
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(o *gatewayOptions) { o.now = now }
}

// New arma el gateway sin abrir conexiones.
//
// Example:
//
//	gw, err := internal.New(cfg, tel, internal.WithLedger(ledger))
//	if err != nil {
//	    return err
//	}
//	return gw.Run(ctx)
func New(config *Config, tel *telemetry.Client, opts ...Option) (*Gateway, error) {
	o := gatewayOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	g := &Gateway{
		config:       config,
		now:          o.now,
		telemetry:    tel,
		metrics:      tel.GatewayMetrics(),
		ctx:          telemetry.AppendCommonAttrs(context.Background(), semconv.Gateway.Component.String("gateway")),
		brokerEvents: make(chan transport.Event, eventQueueSize),
		engineEvents: make(chan transport.Event, eventQueueSize),
		state:        bootstrap.WaitForConnect,
		health:       o.health,
	}

	brokerOpts := []transport.Option{
		transport.WithName(semconv.TransportValues.Broker),
		transport.WithTelemetry(tel),
	}
	if o.brokerDialer != nil {
		brokerOpts = append(brokerOpts, transport.WithDialer(o.brokerDialer))
	}
	if o.brokerPolicy != nil {
		brokerOpts = append(brokerOpts, transport.WithPolicy(o.brokerPolicy))
	}
	g.broker = transport.NewFramedTransport(config.BrokerEndpoint(), g.brokerEvents, brokerOpts...)

	engineOpts := []transport.Option{
		transport.WithName(semconv.TransportValues.Engine),
		transport.WithTelemetry(tel),
	}
	if o.engineDialer != nil {
		engineOpts = append(engineOpts, transport.WithDialer(o.engineDialer))
	}
	if o.enginePolicy != nil {
		engineOpts = append(engineOpts, transport.WithPolicy(o.enginePolicy))
	}
	g.engine = transport.NewLineTransport(config.EngineAddress, g.engineEvents, engineOpts...)

	g.rec = reconciler.New(config.AccountID, g, nil,
		reconciler.WithTelemetry(tel),
		reconciler.WithClock(g.now),
	)

	deps := strategy.Deps{
		SessionID:   config.SessionID,
		Instruments: config.Instruments,
		Engine:      g,
		Broker:      g.rec,
		Telemetry:   tel,
	}
	if o.ledger != nil {
		deps.Ledger = o.ledger
	}
	strat, err := strategy.New(config.Strategy, deps)
	if err != nil {
		return nil, domain.NewValidationError("strategy", config.Strategy, err.Error())
	}
	g.strategy = strat

	listeners := fanout{strat}
	if o.journal != nil {
		g.journal = newJournalListener(o.journal, g.rec, tel, g.now)
		listeners = append(listeners, g.journal)
	}
	g.rec.SetListener(listeners)

	return g, nil
}

// State retorna el estado actual del bootstrap.
func (g *Gateway) State() bootstrap.State { return g.state }

// Reconciler expone el estado de la cuenta (sólo desde el event loop).
func (g *Gateway) Reconciler() *reconciler.Reconciler { return g.rec }

// Run conecta ambos transportes y procesa eventos hasta que ctx se cancele
// o aparezca una condición fatal.
//
// Retorna nil en un cierre ordenado y *domain.FatalError en cualquier otro caso.
func (g *Gateway) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g.ctx = telemetry.AppendCommonAttrs(ctx, semconv.Gateway.Component.String("gateway"))

	g.logInfo("Gateway starting", map[string]interface{}{
		"broker_address": g.config.BrokerEndpoint(),
		"engine_address": g.config.EngineAddress,
		"strategy":       g.strategy.Name(),
		"instruments":    len(g.config.Instruments),
	})

	defer g.shutdown()
	if err := g.engine.Start(ctx); err != nil {
		return g.fatal(domain.NewFatalError(domain.ErrEngineUnreachable, "engine link failed to start", err))
	}
	if err := g.broker.Start(ctx); err != nil {
		return g.fatal(domain.NewFatalError(domain.ErrBrokerUnreachable, "broker link failed to start", err))
	}

	ticker := time.NewTicker(heartbeatCheckFreq)
	defer ticker.Stop()

	for {
		var err error
		select {
		case <-ctx.Done():
			g.logInfo("Gateway stopping", map[string]interface{}{"state": g.state.String()})
			return nil

		case ev := <-g.brokerEvents:
			err = g.handleBrokerEvent(ev)

		case ev := <-g.engineEvents:
			err = g.handleEngineEvent(ev)

		case <-ticker.C:
			g.heartbeatTick()

		case <-g.stageC:
			g.stageC = nil
			g.logWarn("Handshake stage timed out", map[string]interface{}{
				"state":   g.state.String(),
				"timeout": g.config.StageTimeout,
			})
			err = g.step(bootstrap.Event{Kind: bootstrap.StageTimeout})
		}

		if err != nil {
			return g.fatal(err)
		}
	}
}

func (g *Gateway) fatal(err error) error {
	if !domain.IsFatalError(err) {
		err = domain.NewFatalError(domain.ErrUnknown, "gateway stopped", err)
	}
	g.logError("Fatal condition, stopping gateway", err, map[string]interface{}{
		"state":      g.state.String(),
		"error_code": string(domain.CodeOf(err)),
	})
	if g.stageSpan != nil {
		g.telemetry.RecordError(trace.ContextWithSpan(g.ctx, g.stageSpan), err,
			semconv.Gateway.State.String(g.state.String()),
		)
	}
	return err
}

func (g *Gateway) shutdown() {
	g.stopStageTimer()
	g.endStage()
	g.setServing(false)
	if err := g.broker.Close(); err != nil {
		g.logWarn("Broker link close failed", map[string]interface{}{"error": err})
	}
	if err := g.engine.Close(); err != nil {
		g.logWarn("Engine link close failed", map[string]interface{}{"error": err})
	}
}

// step aplica un evento a la máquina de bootstrap y ejecuta sus acciones.
func (g *Gateway) step(ev bootstrap.Event) error {
	prev := g.state
	next, actions, err := bootstrap.Transition(prev, ev)
	if err != nil {
		return err
	}
	g.state = next
	if next != prev {
		g.onStateChange(prev, next)
	}
	for _, action := range actions {
		if err := g.execute(action, ev); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gateway) onStateChange(prev, next bootstrap.State) {
	g.endStage()
	g.logInfo("Bootstrap state changed", map[string]interface{}{
		"from": prev.String(),
		"to":   next.String(),
	})
	if next.Handshaking() {
		g.stageStart = g.now()
		var ctx context.Context
		ctx, g.stageSpan = g.telemetry.StartSpan(g.ctx, "gateway.bootstrap."+next.String())
		g.telemetry.SetSpanAttributes(ctx, semconv.Gateway.State.String(next.String()))
	}
}

// endStage cierra la medición de la etapa de handshake en curso.
func (g *Gateway) endStage() {
	if g.stageSpan == nil {
		return
	}
	stage := g.state.String()
	g.stageSpan.End()
	g.stageSpan = nil
	g.metrics.RecordStageDuration(g.ctx, stage, g.now().Sub(g.stageStart).Seconds())
}

func (g *Gateway) execute(action bootstrap.Action, ev bootstrap.Event) error {
	switch action {
	case bootstrap.SendAppAuth:
		g.sendHandshake(appAuthReq(g.config))
	case bootstrap.SendAccountAuth:
		g.sendHandshake(accountAuthReq(g.config))
	case bootstrap.RequestTrader:
		g.sendHandshake(traderReq(g.config))
	case bootstrap.ApplyTrader:
		g.applyTrader(ev.Message)
	case bootstrap.RequestSymbols:
		g.sendHandshake(symbolsListReq(g.config))
	case bootstrap.IndexSymbols:
		g.indexSymbols(ev.Message)
	case bootstrap.RequestSymbolSpecs:
		g.requestSymbolSpecs()
	case bootstrap.RequestPositions:
		g.sendHandshake(reconcileReq(g.config))
	case bootstrap.ApplySymbolSpecs:
		g.applySymbolSpecs(ev.Message)
	case bootstrap.SeedPositions:
		g.seedPositions(ev.Message)
	case bootstrap.BootstrapComplete:
		g.completeBootstrap()
	case bootstrap.Dispatch:
		g.dispatch(ev.Message, ev.ClientMsgID)
	case bootstrap.LogUnexpected:
		g.logUnexpected(ev.Message)
	case bootstrap.ArmStageTimer:
		g.armStageTimer()
	case bootstrap.StopStageTimer:
		g.stopStageTimer()
	case bootstrap.RecycleBroker:
		g.broker.Recycle()
	case bootstrap.ResetSession:
		g.resetSession()
	}
	return nil
}

func (g *Gateway) completeBootstrap() {
	g.bootstraps++
	g.lastHeartbeat = g.now()

	account := g.rec.Account()
	g.logInfo("Bootstrap complete", map[string]interface{}{
		"bootstraps":  g.bootstraps,
		"positions":   len(g.rec.Positions()),
		"balance":     account.Balance,
		"broker_name": account.BrokerName,
	})

	if subscribed, err := g.rec.SubscribeInstrumentsEx(g.config.Instruments); err != nil {
		g.logError("Spot subscription failed", err, nil)
	} else {
		g.logInfo("Spot subscription requested", map[string]interface{}{"instruments": len(subscribed)})
	}

	g.setServing(true)
	if g.journal != nil {
		g.journal.snapshot()
	}
	g.strategy.OnBootstrapComplete()
}

func (g *Gateway) resetSession() {
	g.setServing(false)
	g.strategy.OnBrokerLost()
	g.logWarn("Broker session reset", map[string]interface{}{
		"positions": len(g.rec.Positions()),
	})
}

func (g *Gateway) armStageTimer() {
	g.stopStageTimer()
	if g.config.StageTimeout <= 0 {
		return
	}
	g.stageTimer = time.NewTimer(g.config.StageTimeout)
	g.stageC = g.stageTimer.C
}

func (g *Gateway) stopStageTimer() {
	if g.stageTimer != nil {
		g.stageTimer.Stop()
	}
	g.stageTimer = nil
	g.stageC = nil
}

func (g *Gateway) setServing(serving bool) {
	if g.health != nil {
		g.health.SetServing(serving)
	}
}

// logInfo loggea un mensaje INFO.
func (g *Gateway) logInfo(message string, fields map[string]interface{}) {
	g.telemetry.Info(g.ctx, message, mapToAttrs(fields)...)
}

// logWarn loggea un mensaje WARN.
func (g *Gateway) logWarn(message string, fields map[string]interface{}) {
	g.telemetry.Warn(g.ctx, message, mapToAttrs(fields)...)
}

// logError loggea un mensaje ERROR.
func (g *Gateway) logError(message string, err error, fields map[string]interface{}) {
	g.telemetry.Error(g.ctx, message, err, mapToAttrs(fields)...)
}

func (g *Gateway) logDebug(message string, fields map[string]interface{}) {
	g.telemetry.Debug(g.ctx, message, mapToAttrs(fields)...)
}
