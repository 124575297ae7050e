package internal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xKoRx/hftgate/sdk/domain"
)

func openTestLedger(t *testing.T) *AdviceLedger {
	t.Helper()
	ledger, err := OpenAdviceLedger(filepath.Join(t.TempDir(), "nested", "advice.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })
	return ledger
}

func TestAdviceLedgerLifecycle(t *testing.T) {
	ledger := openTestLedger(t)
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	ledger.now = func() time.Time { return base }

	require.NoError(t, ledger.Reserve("hft_1", "EURUSD", domain.TradeSideLong, 1000))

	rec, err := ledger.Get("hft_1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, AdvicePending, rec.State)
	assert.Equal(t, "LONG", rec.Side)
	assert.Equal(t, base.UnixMilli(), rec.CreatedAt)

	ledger.now = func() time.Time { return base.Add(time.Second) }
	require.NoError(t, ledger.MarkOpen("hft_1", 77, decimal.RequireFromString("1.0851")))
	ledger.now = func() time.Time { return base.Add(2 * time.Second) }
	require.NoError(t, ledger.MarkClosed("hft_1", decimal.RequireFromString("1.0872")))

	rec, err = ledger.Get("hft_1")
	require.NoError(t, err)
	assert.Equal(t, AdviceClosed, rec.State)
	assert.Equal(t, int64(77), rec.PositionID)
	assert.Equal(t, "1.0851", rec.OpenPrice)
	assert.Equal(t, "1.0872", rec.ClosePrice)
	assert.Equal(t, base.UnixMilli(), rec.CreatedAt, "created_at survives transitions")
	assert.Equal(t, base.Add(2*time.Second).UnixMilli(), rec.UpdatedAt)

	events, err := ledger.Events("hft_1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []AdviceState{AdvicePending, AdviceOpen, AdviceClosed},
		[]AdviceState{events[0].State, events[1].State, events[2].State})
}

func TestAdviceLedgerRejectsActiveDuplicates(t *testing.T) {
	ledger := openTestLedger(t)

	require.NoError(t, ledger.Reserve("hft_2", "EURUSD", domain.TradeSideShort, 1000))
	err := ledger.Reserve("hft_2", "EURUSD", domain.TradeSideShort, 1000)
	require.Error(t, err)
	assert.Equal(t, domain.ErrDuplicateAdvice, domain.CodeOf(err))

	require.NoError(t, ledger.MarkOpen("hft_2", 10, decimal.NewFromInt(1)))
	err = ledger.Reserve("hft_2", "EURUSD", domain.TradeSideShort, 1000)
	assert.Equal(t, domain.ErrDuplicateAdvice, domain.CodeOf(err))
}

func TestAdviceLedgerReusesFinishedLabels(t *testing.T) {
	ledger := openTestLedger(t)

	require.NoError(t, ledger.Reserve("hft_3", "EURUSD", domain.TradeSideLong, 1000))
	require.NoError(t, ledger.MarkFailed("hft_3", "NOT_ENOUGH_MONEY"))

	rec, err := ledger.Get("hft_3")
	require.NoError(t, err)
	assert.Equal(t, AdviceFailed, rec.State)
	assert.Equal(t, "NOT_ENOUGH_MONEY", rec.LastError)

	require.NoError(t, ledger.Reserve("hft_3", "EURUSD", domain.TradeSideLong, 2000))
	rec, err = ledger.Get("hft_3")
	require.NoError(t, err)
	assert.Equal(t, AdvicePending, rec.State)
	assert.Equal(t, int64(2000), rec.Qty)
	assert.Empty(t, rec.LastError)
}

func TestAdviceLedgerMarkOpenIsIdempotent(t *testing.T) {
	ledger := openTestLedger(t)

	// Posición sincronizada desde el broker sin reserva previa
	require.NoError(t, ledger.MarkOpen("hft_4", 5, decimal.NewFromInt(2)))
	require.NoError(t, ledger.MarkOpen("hft_4", 5, decimal.NewFromInt(2)))

	events, err := ledger.Events("hft_4")
	require.NoError(t, err)
	assert.Len(t, events, 1)

	active, err := ledger.Active()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "hft_4", active[0].Label)
}

func TestAdviceLedgerPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advice.db")
	ledger, err := OpenAdviceLedger(path)
	require.NoError(t, err)
	require.NoError(t, ledger.Reserve("hft_5", "GBPUSD", domain.TradeSideLong, 1000))
	require.NoError(t, ledger.Close())

	reopened, err := OpenAdviceLedger(path)
	require.NoError(t, err)
	defer reopened.Close()

	err = reopened.Reserve("hft_5", "GBPUSD", domain.TradeSideLong, 1000)
	assert.Equal(t, domain.ErrDuplicateAdvice, domain.CodeOf(err))
}

func TestAdviceLedgerRejectsEmptyLabel(t *testing.T) {
	ledger := openTestLedger(t)
	err := ledger.Reserve("", "EURUSD", domain.TradeSideLong, 1000)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	rec, err := ledger.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, rec)
}
