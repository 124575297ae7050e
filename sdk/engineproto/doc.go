// Package engineproto implementa el protocolo JSON de líneas con el engine
// de decisión.
//
// Requests (gateway → engine), con "method" siempre como primera clave:
//
//	{"method":"init","sessid":"icmarkets-session","instruments":["EURUSD","GBPUSD"]}
//	{"method":"sync","instrument":"EURUSD","id":"hft_1","timestamp":"2024-03-01 12:00:00.123","direction":"LONG","price":1.0851,"qty":1000}
//	{"method":"tick","instrument":"EURUSD","timestamp":"2024-03-01 12:00:00.123","ask":1.0851,"bid":1.0849,"equity":10234.5,"free_margin":9800.1}
//	{"method":"open_notify","instrument":"EURUSD","id":"hft_1","status":"ok","price":1.0851}
//	{"method":"close_notify","instrument":"EURUSD","id":"hft_1","status":"error","price":0}
//
// Responses (engine → gateway):
//
//	{"status":"ack"}
//	{"status":"error","message":"..."}
//	{"status":"advice","instrument":"EURUSD","operations":[{"op":"LONG","id":"hft_1","qty":1000},{"op":"close","id":"hft_0"}]}
//
// La decodificación es estricta: cada campo requerido se verifica en
// presencia y tipo. Una violación retorna *ProtocolViolation; afecta sólo a
// ese mensaje.
package engineproto
