// Package openapi implementa el codec del protocolo binario del broker
// (cTrader Open API) sobre protowire, sin código generado.
//
// Cada frame del transporte es un envelope:
//
//	ProtoMessage {
//	    payloadType uint32 = 1
//	    payload     bytes  = 2
//	    clientMsgId string = 3
//	}
//
// El payload se interpreta según payloadType. Sólo el subconjunto de mensajes
// que usa el gateway tiene tipo propio; el resto se decodifica como *Unknown y
// el llamador lo registra y lo ignora.
//
// # Uso
//
//	frame := openapi.Encode(&openapi.AppAuthReq{ClientID: id, ClientSecret: secret}, utils.NewClientMsgID())
//	_ = broker.Send(frame)
//
//	env, msg, err := openapi.Decode(payload)
//	switch m := msg.(type) {
//	case *openapi.SpotEvent:
//	    // m.Bid, m.Ask en unidades de 1/100000
//	case *openapi.Unknown:
//	    // tag no soportado
//	}
//
// Los montos se transportan como enteros; moneyDigits de cada mensaje indica
// la escala. La conversión a decimal es responsabilidad de sdk/domain.
package openapi
