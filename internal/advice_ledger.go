package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	bolt "go.etcd.io/bbolt"

	"github.com/xKoRx/hftgate/sdk/domain"
	"github.com/xKoRx/hftgate/sdk/utils"
)

const (
	adviceBucketName = "advices"
	eventBucketName  = "advice_events"
)

// AdviceState es el estado de un advice en el ledger.
type AdviceState string

const (
	AdvicePending AdviceState = "pending"
	AdviceOpen    AdviceState = "open"
	AdviceClosed  AdviceState = "closed"
	AdviceFailed  AdviceState = "failed"
)

// Active indica si el label todavía tiene una orden o posición viva.
func (s AdviceState) Active() bool {
	return s == AdvicePending || s == AdviceOpen
}

// AdviceLedger persiste en bbolt el ciclo de vida de cada advice por label,
// para rechazar advices duplicados incluso entre reinicios.
//
// Cada transición agrega además un evento con clave ULID a un log append-only.
type AdviceLedger struct {
	db  *bolt.DB
	now func() time.Time
}

// AdviceRecord es el estado persistido de un label.
type AdviceRecord struct {
	Label      string      `json:"label"`
	Instrument string      `json:"instrument"`
	Side       string      `json:"side"`
	Qty        int64       `json:"qty"`
	State      AdviceState `json:"state"`
	PositionID int64       `json:"position_id,omitempty"`
	OpenPrice  string      `json:"open_price,omitempty"`
	ClosePrice string      `json:"close_price,omitempty"`
	LastError  string      `json:"last_error,omitempty"`
	CreatedAt  int64       `json:"created_at"`
	UpdatedAt  int64       `json:"updated_at"`
}

// AdviceEvent es una entrada del log de transiciones.
type AdviceEvent struct {
	ID     string      `json:"id"`
	Label  string      `json:"label"`
	State  AdviceState `json:"state"`
	Detail string      `json:"detail,omitempty"`
	At     int64       `json:"at"`
}

// OpenAdviceLedger abre (o crea) el ledger en path.
func OpenAdviceLedger(path string) (*AdviceLedger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir ledger path: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{adviceBucketName, eventBucketName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}
	return &AdviceLedger{db: db, now: time.Now}, nil
}

func (l *AdviceLedger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Reserve registra un advice de apertura como pending.
//
// Falla con domain.ErrDuplicateAdvice si el label está pending u open; un
// label closed o failed puede reutilizarse.
func (l *AdviceLedger) Reserve(label, instrument string, side domain.TradeSide, qty int64) error {
	return l.transition(label, "reserved", func(rec *AdviceRecord, exists bool) error {
		if exists && rec.State.Active() {
			return domain.NewError(domain.ErrDuplicateAdvice, "advice already active").
				WithDetail("label", label).
				WithDetail("state", string(rec.State))
		}
		*rec = AdviceRecord{
			Label:      label,
			Instrument: instrument,
			Side:       side.String(),
			Qty:        qty,
			State:      AdvicePending,
		}
		return nil
	})
}

// MarkOpen registra el fill de apertura. Crea el registro si el label no
// existía (posiciones sincronizadas desde el broker).
func (l *AdviceLedger) MarkOpen(label string, positionID int64, price decimal.Decimal) error {
	return l.transition(label, "position "+fmt.Sprint(positionID), func(rec *AdviceRecord, exists bool) error {
		if exists && rec.State == AdviceOpen && rec.PositionID == positionID {
			return errUnchanged
		}
		rec.Label = label
		rec.State = AdviceOpen
		rec.PositionID = positionID
		rec.OpenPrice = price.String()
		rec.LastError = ""
		return nil
	})
}

// MarkClosed registra el cierre de la posición.
func (l *AdviceLedger) MarkClosed(label string, price decimal.Decimal) error {
	return l.transition(label, "closed at "+price.String(), func(rec *AdviceRecord, _ bool) error {
		rec.Label = label
		rec.State = AdviceClosed
		rec.ClosePrice = price.String()
		return nil
	})
}

// MarkFailed registra un rechazo de apertura.
func (l *AdviceLedger) MarkFailed(label, reason string) error {
	return l.transition(label, reason, func(rec *AdviceRecord, _ bool) error {
		rec.Label = label
		rec.State = AdviceFailed
		rec.LastError = reason
		return nil
	})
}

// errUnchanged corta una transición sin escribir.
var errUnchanged = errors.New("unchanged")

func (l *AdviceLedger) transition(label, detail string, apply func(rec *AdviceRecord, exists bool) error) error {
	if label == "" {
		return domain.NewValidationError("label", label, "cannot be empty")
	}
	now := l.now()
	err := l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(adviceBucketName))
		key := []byte(label)

		var rec AdviceRecord
		data := b.Get(key)
		exists := len(data) > 0
		if exists {
			if err := json.Unmarshal(data, &rec); err != nil {
				return fmt.Errorf("decode advice %s: %w", label, err)
			}
		}
		createdAt := rec.CreatedAt

		if err := apply(&rec, exists); err != nil {
			return err
		}
		rec.CreatedAt = createdAt
		if rec.CreatedAt == 0 {
			rec.CreatedAt = now.UnixMilli()
		}
		rec.UpdatedAt = now.UnixMilli()

		updated, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := b.Put(key, updated); err != nil {
			return err
		}

		ev := AdviceEvent{
			ID:     utils.NewEventIDAt(now),
			Label:  label,
			State:  rec.State,
			Detail: detail,
			At:     now.UnixMilli(),
		}
		evData, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(eventBucketName)).Put([]byte(ev.ID), evData)
	})
	if errors.Is(err, errUnchanged) {
		return nil
	}
	return err
}

// Get retorna el registro del label o nil si no existe.
func (l *AdviceLedger) Get(label string) (*AdviceRecord, error) {
	var rec *AdviceRecord
	err := l.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(adviceBucketName)).Get([]byte(label))
		if len(data) == 0 {
			return nil
		}
		var r AdviceRecord
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		rec = &r
		return nil
	})
	return rec, err
}

// Active lista los labels pending u open.
func (l *AdviceLedger) Active() ([]*AdviceRecord, error) {
	var results []*AdviceRecord
	err := l.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(adviceBucketName)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var rec AdviceRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			if rec.State.Active() {
				results = append(results, &rec)
			}
		}
		return nil
	})
	return results, err
}

// Events retorna las transiciones de un label en orden cronológico.
func (l *AdviceLedger) Events(label string) ([]AdviceEvent, error) {
	var events []AdviceEvent
	err := l.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(eventBucketName)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var ev AdviceEvent
			if err := json.Unmarshal(v, &ev); err != nil {
				continue
			}
			if ev.Label == label {
				events = append(events, ev)
			}
		}
		return nil
	})
	return events, err
}
