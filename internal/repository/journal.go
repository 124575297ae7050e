// Package repository provee el journal SQL del gateway: posiciones cerradas,
// rechazos de órdenes y snapshots de balance.
//
// Soporta PostgreSQL (lib/pq) y SQLite (glebarez/go-sqlite, puro Go).
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/glebarez/go-sqlite" // Driver SQLite
	_ "github.com/lib/pq"             // Driver PostgreSQL
	"github.com/shopspring/decimal"

	"github.com/xKoRx/hftgate/sdk/domain"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Tipos de rechazo registrados en order_errors.
const (
	ErrorKindOpen  = "open"
	ErrorKindClose = "close"
)

// dialect aísla las diferencias de placeholders y DDL entre motores.
type dialect struct {
	name        string
	numeric     string
	bigSerial   string
	placeholder func(n int) string
}

var dialects = map[string]dialect{
	DriverPostgres: {
		name:        DriverPostgres,
		numeric:     "NUMERIC",
		bigSerial:   "BIGSERIAL PRIMARY KEY",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	},
	DriverSQLite: {
		name:        DriverSQLite,
		numeric:     "TEXT",
		bigSerial:   "INTEGER PRIMARY KEY AUTOINCREMENT",
		placeholder: func(int) string { return "?" },
	},
}

// Journal escribe el historial de trading en una base SQL.
type Journal struct {
	db      *sql.DB
	dialect dialect
}

// Open abre la base y crea las tablas si no existen.
//
// Uso:
//
//	journal, err := repository.Open(ctx, "sqlite", "file:data/journal.db")
//	if err != nil {
//	    return err
//	}
//	defer journal.Close()
func Open(ctx context.Context, driver, dsn string) (*Journal, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported journal driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if driver == DriverSQLite {
		// SQLite admite un único escritor
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}

	j := &Journal{db: db, dialect: d}
	if err := j.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Driver retorna el nombre del motor.
func (j *Journal) Driver() string { return j.dialect.name }

func (j *Journal) migrate(ctx context.Context) error {
	n, serial := j.dialect.numeric, j.dialect.bigSerial
	statements := []string{
		`CREATE TABLE IF NOT EXISTS closed_positions (
			id ` + serial + `,
			position_id BIGINT NOT NULL,
			label TEXT NOT NULL,
			instrument TEXT NOT NULL,
			side TEXT NOT NULL,
			volume BIGINT NOT NULL,
			entry_price ` + n + ` NOT NULL,
			close_price ` + n + ` NOT NULL,
			gross_profit ` + n + ` NOT NULL,
			balance ` + n + ` NOT NULL,
			closed_at_ms BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_errors (
			id ` + serial + `,
			kind TEXT NOT NULL,
			position_id BIGINT NOT NULL,
			order_id BIGINT NOT NULL,
			label TEXT NOT NULL,
			instrument TEXT NOT NULL,
			side TEXT NOT NULL,
			volume BIGINT NOT NULL,
			error_code TEXT NOT NULL,
			description TEXT NOT NULL,
			recorded_at_ms BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS balance_snapshots (
			id ` + serial + `,
			account_id BIGINT NOT NULL,
			balance ` + n + ` NOT NULL,
			equity ` + n + ` NOT NULL,
			recorded_at_ms BIGINT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := j.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate journal: %w", err)
		}
	}
	return nil
}

// insert arma un INSERT con los placeholders del dialecto.
func (j *Journal) insert(table string, columns ...string) string {
	marks := make([]string, len(columns))
	for i := range columns {
		marks[i] = j.dialect.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), strings.Join(marks, ", "))
}

// RecordClose registra una posición cerrada.
func (j *Journal) RecordClose(ctx context.Context, info domain.ClosedPositionInfo) error {
	query := j.insert("closed_positions",
		"position_id", "label", "instrument", "side", "volume",
		"entry_price", "close_price", "gross_profit", "balance", "closed_at_ms",
	)
	_, err := j.db.ExecContext(ctx, query,
		info.PositionID,
		info.Label,
		info.Instrument,
		info.Side.String(),
		info.Volume,
		info.EntryPrice.String(),
		info.ClosePrice.String(),
		info.GrossProfit.String(),
		info.Balance.String(),
		info.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to record close: %w", err)
	}
	return nil
}

// RecordOrderError registra un rechazo de apertura (ErrorKindOpen) o de cierre (ErrorKindClose).
func (j *Journal) RecordOrderError(ctx context.Context, kind string, info domain.OrderErrorInfo, atMs int64) error {
	query := j.insert("order_errors",
		"kind", "position_id", "order_id", "label", "instrument", "side",
		"volume", "error_code", "description", "recorded_at_ms",
	)
	_, err := j.db.ExecContext(ctx, query,
		kind,
		info.PositionID,
		info.OrderID,
		info.Label,
		info.Instrument,
		info.Side.String(),
		info.Volume,
		info.ErrorCode,
		info.Description,
		atMs,
	)
	if err != nil {
		return fmt.Errorf("failed to record order error: %w", err)
	}
	return nil
}

// RecordBalance registra un snapshot de balance y equity.
func (j *Journal) RecordBalance(ctx context.Context, accountID int64, balance, equity decimal.Decimal, atMs int64) error {
	query := j.insert("balance_snapshots", "account_id", "balance", "equity", "recorded_at_ms")
	if _, err := j.db.ExecContext(ctx, query, accountID, balance.String(), equity.String(), atMs); err != nil {
		return fmt.Errorf("failed to record balance: %w", err)
	}
	return nil
}

// ClosedPositions retorna los últimos cierres, más recientes primero.
func (j *Journal) ClosedPositions(ctx context.Context, limit int) ([]domain.ClosedPositionInfo, error) {
	query := fmt.Sprintf(`
		SELECT position_id, label, instrument, side, volume,
		       entry_price, close_price, gross_profit, balance, closed_at_ms
		FROM closed_positions
		ORDER BY closed_at_ms DESC, id DESC
		LIMIT %s`, j.dialect.placeholder(1))

	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query closed positions: %w", err)
	}
	defer rows.Close()

	var out []domain.ClosedPositionInfo
	for rows.Next() {
		var (
			info                               domain.ClosedPositionInfo
			side                               string
			entry, closePrice, profit, balance string
		)
		if err := rows.Scan(
			&info.PositionID,
			&info.Label,
			&info.Instrument,
			&side,
			&info.Volume,
			&entry,
			&closePrice,
			&profit,
			&balance,
			&info.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan closed position: %w", err)
		}
		info.Side, _ = domain.ParseTradeSide(side)
		info.EntryPrice = parseDecimal(entry)
		info.ClosePrice = parseDecimal(closePrice)
		info.GrossProfit = parseDecimal(profit)
		info.Balance = parseDecimal(balance)
		out = append(out, info)
	}
	return out, rows.Err()
}

// CountOrderErrors cuenta los rechazos registrados de un tipo.
func (j *Journal) CountOrderErrors(ctx context.Context, kind string) (int, error) {
	query := "SELECT COUNT(*) FROM order_errors WHERE kind = " + j.dialect.placeholder(1)
	var n int
	if err := j.db.QueryRowContext(ctx, query, kind).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count order errors: %w", err)
	}
	return n, nil
}

// LatestBalance retorna el último balance registrado de la cuenta.
func (j *Journal) LatestBalance(ctx context.Context, accountID int64) (decimal.Decimal, bool, error) {
	query := `SELECT balance FROM balance_snapshots WHERE account_id = ` + j.dialect.placeholder(1) +
		` ORDER BY recorded_at_ms DESC, id DESC LIMIT 1`
	var raw string
	err := j.db.QueryRowContext(ctx, query, accountID).Scan(&raw)
	if err == sql.ErrNoRows {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to query balance: %w", err)
	}
	return parseDecimal(raw), true, nil
}

func parseDecimal(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}
