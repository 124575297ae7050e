package internal

import (
	"fmt"

	"github.com/xKoRx/hftgate/sdk/domain"
	"github.com/xKoRx/hftgate/sdk/engineproto"
	"github.com/xKoRx/hftgate/sdk/transport"
)

func (g *Gateway) handleEngineEvent(ev transport.Event) error {
	switch ev.Kind {
	case transport.EventConnected:
		g.logInfo("Engine connected", map[string]interface{}{"address": g.config.EngineAddress})
		g.strategy.OnEngineConnected()

	case transport.EventError:
		g.logWarn("Engine connection lost", map[string]interface{}{"error": ev.Err})
		g.strategy.OnEngineLost()

	case transport.EventFatal:
		return domain.NewFatalError(domain.ErrEngineUnreachable, "engine reconnect attempts exhausted", ev.Err)

	case transport.EventData:
		g.handleEngineLine(ev.Data)
	}
	return nil
}

// handleEngineLine decodifica una respuesta del engine. Las líneas que violan
// el protocolo se descartan sin respuesta.
func (g *Gateway) handleEngineLine(line []byte) {
	resp, err := engineproto.DecodeResponse(line)
	if err != nil {
		field := "json"
		if v, ok := engineproto.AsViolation(err); ok {
			field = v.Field
		}
		g.metrics.RecordProtocolViolation(g.ctx, field)
		g.logWarn("Engine message discarded", map[string]interface{}{
			"error": err,
			"line":  truncate(string(line), 256),
		})
		return
	}

	ready := g.state.Ready()
	if resp.Status == engineproto.StatusAdvice {
		g.logDebug("Advice received", map[string]interface{}{
			"instrument":   resp.Instrument,
			"operations":   len(resp.Operations),
			"broker_ready": ready,
		})
	}
	g.strategy.OnEngineAdvice(resp, ready)
}

// SendEngine serializa req y lo encola hacia el engine.
func (g *Gateway) SendEngine(req engineproto.Request) error {
	line, err := engineproto.EncodeRequest(req)
	if err != nil {
		return err
	}
	if err := g.engine.Send(line); err != nil {
		return fmt.Errorf("send %s: %w", req.Method(), err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
