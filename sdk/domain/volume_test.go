package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVolume(t *testing.T) {
	info := InstrumentInfo{InstrumentID: 1, Ticker: "EURUSD", MinVolume: 1000, MaxVolume: 50000, StepVolume: 100}

	tests := []struct {
		name      string
		requested int64
		expected  int64
		wantErr   bool
	}{
		{name: "aligned", requested: 2000, expected: 2000},
		{name: "truncated to step", requested: 1050, expected: 1000},
		{name: "max boundary", requested: 50099, expected: 50000},
		{name: "below min", requested: 900, wantErr: true},
		{name: "above max", requested: 60000, wantErr: true},
		{name: "zero", requested: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vol, err := NormalizeVolume(info, tt.requested)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, ErrInvalidVolume, CodeOf(err))
				assert.Zero(t, vol)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, vol)
		})
	}
}

func TestNormalizeVolumeInvalidSpec(t *testing.T) {
	_, err := NormalizeVolume(InstrumentInfo{MinVolume: 1, MaxVolume: 10}, 5)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "step_volume", verr.Field)
}

func TestScaleMoney(t *testing.T) {
	assert.True(t, ScaleMoney(10053099944, 8).Equal(decimal.RequireFromString("100.53099944")))
	assert.True(t, ScaleMoney(1234, 0).Equal(decimal.NewFromInt(1234)))
	assert.True(t, ScaleMoney(-250, 2).Equal(decimal.RequireFromString("-2.5")))
}

func TestScalePrice(t *testing.T) {
	assert.True(t, ScalePrice(108510).Equal(decimal.RequireFromString("1.0851")))
	assert.True(t, ScalePrice(0).IsZero())
}

func TestTradeSide(t *testing.T) {
	side, err := ParseTradeSide("short")
	require.NoError(t, err)
	assert.Equal(t, TradeSideShort, side)
	assert.Equal(t, "SHORT", side.String())
	assert.True(t, side.Sign().Equal(decimal.NewFromInt(-1)))

	_, err = ParseTradeSide("FLAT")
	assert.Error(t, err)
}

func TestFatalError(t *testing.T) {
	cause := NewError(ErrServerDisconnect, "client disconnect event")
	err := NewFatalError(ErrServerDisconnect, "server closed session", cause)

	assert.True(t, IsFatalError(err))
	assert.False(t, IsFatalError(cause))
	assert.Equal(t, ErrServerDisconnect, CodeOf(err))
}

func TestValidateInstruments(t *testing.T) {
	assert.NoError(t, ValidateInstruments([]string{"EURUSD", "gbpusd"}))
	assert.Error(t, ValidateInstruments(nil))
	assert.Error(t, ValidateInstruments([]string{"EURUSD", " eurusd "}))
	assert.Error(t, ValidateInstruments([]string{""}))
}
