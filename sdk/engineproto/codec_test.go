package engineproto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xKoRx/hftgate/sdk/domain"
)

var canonicalTime = time.Date(2024, 3, 1, 12, 0, 0, 123_000_000, time.UTC)

func TestEncodeCanonicalRequests(t *testing.T) {
	line, err := EncodeRequest(Init{SessID: "icmarkets-session", Instruments: []string{"EURUSD", "GBPUSD"}})
	require.NoError(t, err)
	assert.Equal(t, `{"method":"init","sessid":"icmarkets-session","instruments":["EURUSD","GBPUSD"]}`+"\n", string(line))

	line, err = EncodeRequest(Tick{
		Instrument: "EURUSD",
		Timestamp:  canonicalTime,
		Ask:        1.0851,
		Bid:        1.0849,
		Equity:     10234.5,
		FreeMargin: 9800.1,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"method":"tick","instrument":"EURUSD","timestamp":"2024-03-01 12:00:00.123","ask":1.0851,"bid":1.0849,"equity":10234.5,"free_margin":9800.1}`+"\n", string(line))

	line, err = EncodeRequest(Sync{
		Instrument: "EURUSD",
		ID:         "hft_1",
		Timestamp:  canonicalTime,
		Direction:  domain.TradeSideShort,
		Price:      1.0851,
		Qty:        1000,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"method":"sync","instrument":"EURUSD","id":"hft_1","timestamp":"2024-03-01 12:00:00.123","direction":"SHORT","price":1.0851,"qty":1000}`+"\n", string(line))

	line, err = EncodeRequest(CloseNotify{Notification{Instrument: "EURUSD", ID: "hft_1", Status: NotifyError}})
	require.NoError(t, err)
	assert.Equal(t, `{"method":"close_notify","instrument":"EURUSD","id":"hft_1","status":"error","price":0}`+"\n", string(line))
}

func TestEncodeInitWithoutInstrumentsWritesEmptyArray(t *testing.T) {
	line, err := EncodeRequest(Init{SessID: "s"})
	require.NoError(t, err)
	assert.Equal(t, `{"method":"init","sessid":"s","instruments":[]}`+"\n", string(line))
}

func TestDecodeSyncMissingQtyNamesField(t *testing.T) {
	line := []byte(`{"method":"sync","instrument":"EURUSD","id":"hft_1","timestamp":"2024-03-01 12:00:00.123","direction":"LONG","price":1.0851}`)

	req, err := DecodeRequest(line)
	assert.Nil(t, req)
	v, ok := AsViolation(err)
	require.True(t, ok)
	assert.Equal(t, "qty", v.Field)
	assert.Equal(t, "missing", v.Reason)
}

func TestDecodeRequestViolations(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		field string
	}{
		{"not json", `{"method":`, ""},
		{"array", `[1,2]`, ""},
		{"missing method", `{"sessid":"x"}`, "method"},
		{"unknown method", `{"method":"shutdown"}`, "method"},
		{"qty as string", `{"method":"sync","instrument":"EURUSD","id":"a","timestamp":"2024-03-01 12:00:00.123","direction":"LONG","price":1.1,"qty":"10"}`, "qty"},
		{"qty fractional", `{"method":"sync","instrument":"EURUSD","id":"a","timestamp":"2024-03-01 12:00:00.123","direction":"LONG","price":1.1,"qty":1.5}`, "qty"},
		{"bad direction", `{"method":"sync","instrument":"EURUSD","id":"a","timestamp":"2024-03-01 12:00:00.123","direction":"long","price":1.1,"qty":1}`, "direction"},
		{"bad timestamp", `{"method":"tick","instrument":"EURUSD","timestamp":"2024-03-01T12:00:00Z","ask":1,"bid":1,"equity":1,"free_margin":1}`, "timestamp"},
		{"null instrument", `{"method":"tick","instrument":null,"timestamp":"2024-03-01 12:00:00.123","ask":1,"bid":1,"equity":1,"free_margin":1}`, "instrument"},
		{"instruments not strings", `{"method":"init","sessid":"s","instruments":["EURUSD",3]}`, "instruments[1]"},
		{"bad notify status", `{"method":"open_notify","instrument":"EURUSD","id":"a","status":"done","price":1}`, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRequest([]byte(tt.line))
			v, ok := AsViolation(err)
			require.True(t, ok, "expected violation, got %v", err)
			assert.Equal(t, tt.field, v.Field)
		})
	}
}

func TestDecodeRequestAcceptsEncodedTick(t *testing.T) {
	tick := Tick{Instrument: "EURUSD", Timestamp: canonicalTime, Ask: 1.0851, Bid: 1.0849, Equity: 10234.5, FreeMargin: 9800.1}
	line, err := EncodeRequest(tick)
	require.NoError(t, err)

	req, err := DecodeRequest(line)
	require.NoError(t, err)
	assert.Equal(t, tick, req)
}

func TestDecodeResponses(t *testing.T) {
	resp, err := DecodeResponse([]byte(`{"status":"ack"}`))
	require.NoError(t, err)
	assert.Equal(t, Ack(), resp)

	resp, err = DecodeResponse([]byte(`{"status":"error","message":"bad tick"}`))
	require.NoError(t, err)
	assert.Equal(t, Error("bad tick"), resp)

	resp, err = DecodeResponse([]byte(`{"status":"advice","instrument":"EURUSD","operations":[{"op":"LONG","id":"hft_1700000000a","qty":1000},{"op":"close","id":"hft_0"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "EURUSD", resp.Instrument)
	require.Len(t, resp.Operations, 2)
	assert.Equal(t, domain.TradeSideLong, resp.Operations[0].Side())
	assert.Equal(t, int64(1000), resp.Operations[0].Qty)
	assert.True(t, resp.Operations[1].IsClose())
}

func TestDecodeResponseViolations(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		field string
	}{
		{"missing status", `{"message":"x"}`, "status"},
		{"error without message", `{"status":"error"}`, "message"},
		{"advice without instrument", `{"status":"advice","operations":[]}`, "instrument"},
		{"advice without operations", `{"status":"advice","instrument":"EURUSD"}`, "operations"},
		{"open without qty", `{"status":"advice","instrument":"EURUSD","operations":[{"op":"SHORT","id":"a"}]}`, "operations[0].qty"},
		{"zero qty", `{"status":"advice","instrument":"EURUSD","operations":[{"op":"LONG","id":"a","qty":0}]}`, "operations[0].qty"},
		{"unknown op", `{"status":"advice","instrument":"EURUSD","operations":[{"op":"flip","id":"a"}]}`, "operations[0].op"},
		{"op not object", `{"status":"advice","instrument":"EURUSD","operations":["close"]}`, "operations[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResponse([]byte(tt.line))
			v, ok := AsViolation(err)
			require.True(t, ok, "expected violation, got %v", err)
			assert.Equal(t, tt.field, v.Field)
		})
	}
}

func TestEncodeAdviceAlwaysWritesInstrument(t *testing.T) {
	line, err := EncodeResponse(Advice("EURUSD",
		Operation{Op: OpLong, ID: "hft_1700000000a", Qty: 1000},
		Operation{Op: OpClose, ID: "hft_0"},
	))
	require.NoError(t, err)
	assert.Equal(t, `{"status":"advice","instrument":"EURUSD","operations":[{"op":"LONG","id":"hft_1700000000a","qty":1000},{"op":"close","id":"hft_0"}]}`+"\n", string(line))

	line, err = EncodeResponse(Ack())
	require.NoError(t, err)
	assert.Equal(t, `{"status":"ack"}`+"\n", string(line))

	_, err = EncodeResponse(Response{Status: "maybe"})
	assert.Error(t, err)
}
