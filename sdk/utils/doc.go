// Package utils provee utilidades comunes para el gateway.
//
// # Utilidades Incluidas
//
//   - IDs: clientMsgId del broker (xid) e IDs de eventos ordenables (ULID)
//   - Timestamp: helpers epoch-ms y el formato de texto del engine
//
// # Timestamps del engine
//
// El protocolo del engine usa "YYYY-MM-DD HH:MM:SS.mmm" en UTC:
//
//	s := utils.FormatEngineTimestamp(utils.UnixMilliToTime(1709294400123))
//	// => "2024-03-01 12:00:00.123"
//
//	t, err := utils.ParseEngineTimestamp(s)
//
// # IDs
//
//	msgID := utils.NewClientMsgID()
//	eventKey := utils.NewEventIDAt(time.Now())
package utils
