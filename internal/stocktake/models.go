package stocktake

import (
	"context"
	"time"
)

// StockRecord is the recorded on-hand quantity of one SKU.
type StockRecord struct {
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Adjustment moves a recorded quantity to what was counted.
type Adjustment struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Recorded int    `json:"recorded"`
	Counted  int    `json:"counted"`
	Delta    int    `json:"delta"`
}

// Result is the outcome of diffing a count against the records.
type Result struct {
	Actor       string
	At          time.Time
	Adjustments []Adjustment
	// Unknown lists counted SKUs with no stock record.
	Unknown []string
	// Uncounted lists recorded SKUs missing from the count. They are left as is.
	Uncounted []string
	Matched   int
}

// HasChanges reports whether any record needs adjusting.
func (r Result) HasChanges() bool {
	return len(r.Adjustments) > 0
}

// AuditEntry is one applied stock take.
type AuditEntry struct {
	ID          string       `json:"id"`
	Actor       string       `json:"actor"`
	At          time.Time    `json:"at"`
	Adjustments []Adjustment `json:"adjustments"`
	Unknown     []string     `json:"unknown,omitempty"`
}

type StockRepository interface {
	List(ctx context.Context) ([]StockRecord, error)
	Apply(ctx context.Context, adjustments []Adjustment, at time.Time) error
	// Upsert records the given levels, replacing quantities of known SKUs.
	Upsert(ctx context.Context, records []StockRecord) error
}

// AtomicRecorder is implemented by repositories that can apply adjustments
// and store the audit entry in one transaction.
type AtomicRecorder interface {
	ApplyAndRecord(ctx context.Context, adjustments []Adjustment, entry AuditEntry) error
}

type AuditLog interface {
	Append(ctx context.Context, entry AuditEntry) error
	List(ctx context.Context) ([]AuditEntry, error)
}
