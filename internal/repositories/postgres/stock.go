// Package postgres stores stock levels and the stock-take audit trail in
// the hosted postgres database.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hwdepot/rigbuilder/internal/stocktake"
)

const schema = `
CREATE TABLE IF NOT EXISTS stock_levels (
  sku TEXT PRIMARY KEY,
  name TEXT NOT NULL DEFAULT '',
  quantity INTEGER NOT NULL DEFAULT 0,
  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS stock_audit (
  id UUID PRIMARY KEY,
  actor TEXT NOT NULL,
  at TIMESTAMP WITH TIME ZONE NOT NULL,
  adjustments JSONB NOT NULL,
  unknown JSONB NOT NULL DEFAULT '[]'::jsonb
);
`

type schemaGuard struct {
	once sync.Once
	err  error
}

func (g *schemaGuard) ensure(ctx context.Context, db *sql.DB) error {
	g.once.Do(func() {
		_, g.err = db.ExecContext(ctx, schema)
	})
	if g.err != nil {
		return fmt.Errorf("ensure stock schema: %w", g.err)
	}
	return nil
}

// StockRepository reads and adjusts the stock_levels table.
type StockRepository struct {
	db     *sql.DB
	schema schemaGuard
}

func NewStockRepository(db *sql.DB) (*StockRepository, error) {
	if db == nil {
		return nil, errors.New("postgres handle is required")
	}
	return &StockRepository{db: db}, nil
}

func (r *StockRepository) List(ctx context.Context) ([]stocktake.StockRecord, error) {
	if err := r.schema.ensure(ctx, r.db); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT sku, name, quantity, updated_at FROM stock_levels ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []stocktake.StockRecord
	for rows.Next() {
		var rec stocktake.StockRecord
		if err := rows.Scan(&rec.SKU, &rec.Name, &rec.Quantity, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Apply sets every adjusted SKU to its counted quantity in one transaction.
// The update is guarded on the recorded quantity so a concurrent change
// fails the whole batch instead of being overwritten.
func (r *StockRepository) Apply(ctx context.Context, adjustments []stocktake.Adjustment, at time.Time) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		return applyAdjustments(ctx, tx, adjustments, at)
	})
}

// ApplyAndRecord applies adjustments and inserts the audit entry in the
// same transaction, so stock never changes without its audit row.
func (r *StockRepository) ApplyAndRecord(ctx context.Context, adjustments []stocktake.Adjustment, entry stocktake.AuditEntry) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if err := applyAdjustments(ctx, tx, adjustments, entry.At); err != nil {
			return err
		}
		return insertAudit(ctx, tx, entry)
	})
}

func (r *StockRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if err := r.schema.ensure(ctx, r.db); err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func applyAdjustments(ctx context.Context, db execer, adjustments []stocktake.Adjustment, at time.Time) error {
	for _, adj := range adjustments {
		res, err := db.ExecContext(ctx, `
UPDATE stock_levels
SET quantity = $1, updated_at = $2
WHERE UPPER(sku) = $3 AND quantity = $4`, adj.Counted, at, stocktake.NormalizeSKU(adj.SKU), adj.Recorded)
		if err != nil {
			return fmt.Errorf("adjust %s: %w", adj.SKU, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("adjust %s: stock changed since it was read", adj.SKU)
		}
	}
	return nil
}

func insertAudit(ctx context.Context, db execer, entry stocktake.AuditEntry) error {
	adjustments, err := json.Marshal(entry.Adjustments)
	if err != nil {
		return err
	}
	unknown := entry.Unknown
	if unknown == nil {
		unknown = []string{}
	}
	unknownJSON, err := json.Marshal(unknown)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
INSERT INTO stock_audit (id, actor, at, adjustments, unknown)
VALUES ($1, $2, $3, $4, $5)`, entry.ID, entry.Actor, entry.At, adjustments, unknownJSON)
	if err != nil {
		return fmt.Errorf("insert audit %s: %w", entry.ID, err)
	}
	return nil
}

// Upsert records stock levels, replacing existing quantities.
func (r *StockRepository) Upsert(ctx context.Context, records []stocktake.StockRecord) error {
	if err := r.schema.ensure(ctx, r.db); err != nil {
		return err
	}
	for _, rec := range records {
		_, err := r.db.ExecContext(ctx, `
INSERT INTO stock_levels (sku, name, quantity, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (sku)
DO UPDATE SET name = EXCLUDED.name, quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`,
			stocktake.NormalizeSKU(rec.SKU), rec.Name, rec.Quantity)
		if err != nil {
			return fmt.Errorf("upsert %s: %w", rec.SKU, err)
		}
	}
	return nil
}

// AuditLog appends to the stock_audit table.
type AuditLog struct {
	db     *sql.DB
	schema schemaGuard
}

func NewAuditLog(db *sql.DB) (*AuditLog, error) {
	if db == nil {
		return nil, errors.New("postgres handle is required")
	}
	return &AuditLog{db: db}, nil
}

func (l *AuditLog) Append(ctx context.Context, entry stocktake.AuditEntry) error {
	if err := l.schema.ensure(ctx, l.db); err != nil {
		return err
	}
	return insertAudit(ctx, l.db, entry)
}

func (l *AuditLog) List(ctx context.Context) ([]stocktake.AuditEntry, error) {
	if err := l.schema.ensure(ctx, l.db); err != nil {
		return nil, err
	}
	rows, err := l.db.QueryContext(ctx, `SELECT id, actor, at, adjustments, unknown FROM stock_audit ORDER BY at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []stocktake.AuditEntry
	for rows.Next() {
		var (
			entry       stocktake.AuditEntry
			adjustments []byte
			unknown     []byte
		)
		if err := rows.Scan(&entry.ID, &entry.Actor, &entry.At, &adjustments, &unknown); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(adjustments, &entry.Adjustments); err != nil {
			return nil, fmt.Errorf("decode audit %s: %w", entry.ID, err)
		}
		if err := json.Unmarshal(unknown, &entry.Unknown); err != nil {
			return nil, fmt.Errorf("decode audit %s: %w", entry.ID, err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
