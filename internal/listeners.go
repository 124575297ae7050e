package internal

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xKoRx/hftgate/internal/reconciler"
	"github.com/xKoRx/hftgate/internal/repository"
	"github.com/xKoRx/hftgate/sdk/domain"
	"github.com/xKoRx/hftgate/sdk/telemetry"
	"github.com/xKoRx/hftgate/sdk/telemetry/semconv"
)

const (
	journalWriteTimeout = 2 * time.Second

	journalWriteDuration = "hftgate.journal.write_duration"
	journalWriteErrors   = "hftgate.journal.write_errors"
)

// fanout reparte cada evento del reconciler entre varios listeners, en orden.
type fanout []reconciler.Listener

func (f fanout) OnTick(tick domain.Tick) {
	for _, l := range f {
		l.OnTick(tick)
	}
}

func (f fanout) OnPositionOpen(pos domain.Position) {
	for _, l := range f {
		l.OnPositionOpen(pos)
	}
}

func (f fanout) OnPositionOpenError(info domain.OrderErrorInfo) {
	for _, l := range f {
		l.OnPositionOpenError(info)
	}
}

func (f fanout) OnPositionClose(info domain.ClosedPositionInfo) {
	for _, l := range f {
		l.OnPositionClose(info)
	}
}

func (f fanout) OnPositionCloseError(info domain.OrderErrorInfo) {
	for _, l := range f {
		l.OnPositionCloseError(info)
	}
}

// accountView es la parte del reconciler que consulta el journal.
type accountView interface {
	AccountID() int64
	Account() domain.Account
	Equity() decimal.Decimal
}

// journalListener persiste cierres, rechazos y snapshots de balance.
//
// Un fallo de escritura se loggea y no interrumpe el event loop.
type journalListener struct {
	journal *repository.Journal
	account accountView
	tel     *telemetry.Client
	ctx     context.Context
	now     func() time.Time
}

func newJournalListener(j *repository.Journal, account accountView, tel *telemetry.Client, now func() time.Time) *journalListener {
	return &journalListener{
		journal: j,
		account: account,
		tel:     tel,
		ctx:     telemetry.AppendCommonAttrs(context.Background(), semconv.Gateway.Component.String("journal")),
		now:     now,
	}
}

func (l *journalListener) OnTick(domain.Tick)             {}
func (l *journalListener) OnPositionOpen(domain.Position) {}

func (l *journalListener) OnPositionOpenError(info domain.OrderErrorInfo) {
	l.write("order_error", func(ctx context.Context) error {
		return l.journal.RecordOrderError(ctx, repository.ErrorKindOpen, info, l.now().UnixMilli())
	})
}

func (l *journalListener) OnPositionCloseError(info domain.OrderErrorInfo) {
	l.write("order_error", func(ctx context.Context) error {
		return l.journal.RecordOrderError(ctx, repository.ErrorKindClose, info, l.now().UnixMilli())
	})
}

func (l *journalListener) OnPositionClose(info domain.ClosedPositionInfo) {
	l.write("closed_position", func(ctx context.Context) error {
		return l.journal.RecordClose(ctx, info)
	})
	l.snapshot()
}

// snapshot registra balance y equity actuales.
func (l *journalListener) snapshot() {
	account := l.account.Account()
	l.write("balance_snapshot", func(ctx context.Context) error {
		return l.journal.RecordBalance(ctx, l.account.AccountID(), account.Balance, l.account.Equity(), l.now().UnixMilli())
	})
}

// write ejecuta fn con timeout y mide su duración por tipo de registro.
func (l *journalListener) write(record string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(l.ctx, journalWriteTimeout)
	defer cancel()
	ctx = telemetry.AppendEventAttrs(ctx, semconv.Gateway.Reason.String(record))
	ctx = telemetry.AppendMetricAttrs(ctx, semconv.Metrics.Action.String(record))

	start := l.now()
	err := fn(ctx)
	l.tel.RecordHistogram(ctx, journalWriteDuration, l.now().Sub(start).Seconds())
	if err != nil {
		l.tel.RecordCounter(ctx, journalWriteErrors, 1)
		l.tel.Error(ctx, "Journal write failed", err)
	}
}
