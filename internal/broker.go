package internal

import (
	"fmt"

	"github.com/xKoRx/hftgate/internal/bootstrap"
	"github.com/xKoRx/hftgate/sdk/domain"
	"github.com/xKoRx/hftgate/sdk/openapi"
	"github.com/xKoRx/hftgate/sdk/transport"
	"github.com/xKoRx/hftgate/sdk/utils"
)

const (
	directionIn  = "in"
	directionOut = "out"
)

func (g *Gateway) handleBrokerEvent(ev transport.Event) error {
	switch ev.Kind {
	case transport.EventConnected:
		g.logInfo("Broker connected", map[string]interface{}{"address": g.config.BrokerEndpoint()})
		return g.step(bootstrap.Event{Kind: bootstrap.Connected})

	case transport.EventError:
		g.logWarn("Broker connection lost", map[string]interface{}{
			"error": ev.Err,
			"state": g.state.String(),
		})
		return g.step(bootstrap.Event{Kind: bootstrap.ConnectionLost})

	case transport.EventFatal:
		return domain.NewFatalError(domain.ErrBrokerUnreachable, "broker reconnect attempts exhausted", ev.Err)

	case transport.EventData:
		env, msg, err := openapi.Decode(ev.Data)
		if err != nil {
			g.logWarn("Broker frame discarded", map[string]interface{}{
				"error": err,
				"bytes": len(ev.Data),
			})
			return nil
		}
		g.metrics.RecordFrame(g.ctx, directionIn, uint32(env.PayloadType))
		data := bootstrap.DataEvent(msg)
		data.ClientMsgID = env.ClientMsgID
		return g.step(data)
	}
	return nil
}

// SendBroker serializa msg en un envelope con clientMsgID y lo encola.
func (g *Gateway) SendBroker(msg openapi.Message, clientMsgID string) error {
	pt := msg.PayloadType()
	if err := g.broker.Send(openapi.Encode(msg, clientMsgID)); err != nil {
		return fmt.Errorf("send %s: %w", pt, err)
	}
	g.metrics.RecordFrame(g.ctx, directionOut, uint32(pt))
	if pt == openapi.PayloadHeartbeatEvent {
		g.lastHeartbeat = g.now()
	}
	return nil
}

// sendHandshake envía una request del bootstrap. Un fallo no es fatal: la
// pérdida de conexión que lo causa reinicia el handshake.
func (g *Gateway) sendHandshake(msg openapi.Message) {
	if err := g.SendBroker(msg, utils.NewClientMsgID()); err != nil {
		g.logWarn("Handshake request not sent", map[string]interface{}{
			"payload_type": msg.PayloadType().String(),
			"error":        err,
		})
	}
}

func appAuthReq(c *Config) openapi.Message {
	return &openapi.AppAuthReq{ClientID: c.ClientID, ClientSecret: c.ClientSecret}
}

func accountAuthReq(c *Config) openapi.Message {
	return &openapi.AccountAuthReq{CtidTraderAccountID: c.AccountID, AccessToken: c.AccessToken}
}

func traderReq(c *Config) openapi.Message { return openapi.NewTraderReq(c.AccountID) }

func symbolsListReq(c *Config) openapi.Message {
	return &openapi.SymbolsListReq{CtidTraderAccountID: c.AccountID}
}

func reconcileReq(c *Config) openapi.Message { return openapi.NewReconcileReq(c.AccountID) }

func (g *Gateway) applyTrader(msg openapi.Message) {
	if res, ok := msg.(*openapi.TraderRes); ok {
		g.rec.ApplyTrader(res.Trader)
	}
}

func (g *Gateway) indexSymbols(msg openapi.Message) {
	if res, ok := msg.(*openapi.SymbolsListRes); ok {
		g.rec.IndexSymbols(res.Symbols)
	}
}

// requestSymbolSpecs pide las especificaciones de volumen de los
// instrumentos configurados que el broker indexó.
func (g *Gateway) requestSymbolSpecs() {
	ids := g.rec.SymbolIDs(g.config.Instruments)
	if len(ids) == 0 {
		g.logWarn("No configured instrument is known by the broker", map[string]interface{}{
			"instruments": len(g.config.Instruments),
		})
		return
	}
	g.sendHandshake(openapi.NewSymbolByIDReq(g.config.AccountID, ids))
}

func (g *Gateway) applySymbolSpecs(msg openapi.Message) {
	if res, ok := msg.(*openapi.SymbolByIDRes); ok {
		g.rec.ApplySymbolSpecs(res.Symbols)
	}
}

func (g *Gateway) seedPositions(msg openapi.Message) {
	if res, ok := msg.(*openapi.ReconcileRes); ok {
		g.rec.SeedPositions(res.Positions)
	}
}

// dispatch enruta un mensaje recibido en OPERATIONAL. clientMsgID es el del
// envelope y correlaciona ejecuciones y errores con las órdenes enviadas.
func (g *Gateway) dispatch(msg openapi.Message, clientMsgID string) {
	switch m := msg.(type) {
	case *openapi.HeartbeatEvent:
		g.sendHeartbeat()
		return
	case *openapi.TraderUpdatedEvent:
		g.rec.HandleTraderUpdate(m)
	case *openapi.SpotEvent:
		g.rec.HandleSpot(m)
	case *openapi.ExecutionEvent:
		g.rec.HandleExecution(m, clientMsgID)
	case *openapi.OrderErrorEvent:
		g.rec.HandleOrderError(m, clientMsgID)
	case *openapi.ErrorRes:
		g.rec.HandleError(m.ErrorCode, m.Description)
	case *openapi.OAErrorRes:
		g.rec.HandleError(m.ErrorCode, m.Description)
	case *openapi.SymbolByIDRes:
		g.rec.ApplySymbolSpecs(m.Symbols)
	case *openapi.SubscribeSpotsRes:
		g.logDebug("Spot subscription confirmed", nil)
	case *openapi.SymbolChangedEvent:
		g.logInfo("Symbol change notified", map[string]interface{}{"symbols": len(m.SymbolIDs)})
	default:
		g.logInfo("Broker message ignored", map[string]interface{}{
			"payload_type": msg.PayloadType().String(),
		})
	}

	if g.heartbeatDue() {
		g.sendHeartbeat()
	}
}

func (g *Gateway) logUnexpected(msg openapi.Message) {
	if msg == nil {
		return
	}
	g.logWarn("Unexpected broker message", map[string]interface{}{
		"payload_type": msg.PayloadType().String(),
		"state":        g.state.String(),
	})
}

// heartbeatTick envía un heartbeat proactivo si la sesión está OPERATIONAL y
// venció el intervalo.
func (g *Gateway) heartbeatTick() {
	if g.state.Ready() && g.heartbeatDue() {
		g.sendHeartbeat()
	}
}

func (g *Gateway) heartbeatDue() bool {
	return g.now().Sub(g.lastHeartbeat) > g.config.HeartbeatInterval
}

func (g *Gateway) sendHeartbeat() {
	if err := g.SendBroker(&openapi.HeartbeatEvent{}, utils.NewClientMsgID()); err != nil {
		g.logDebug("Heartbeat not sent", map[string]interface{}{"error": err})
	}
}
