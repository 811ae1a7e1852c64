package stocktake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	Logger *slog.Logger
	Stock  StockRepository
	Audit  AuditLog
	Now    func() time.Time
}

// Run reconciles counted against the stock repository. Unless dryRun is
// set, adjustments are applied and an audit entry is appended.
func (s *Service) Run(ctx context.Context, counted map[string]int, actor string, dryRun bool) (Result, error) {
	if s.Stock == nil {
		return Result{}, errors.New("stock repository is not configured")
	}
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return Result{}, errors.New("actor is required")
	}

	records, err := s.Stock.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list stock: %w", err)
	}

	now := s.now()
	result := Reconcile(records, counted, actor, now)
	logger := s.logger().With("actor", actor)
	logger.Info("stock take reconciled",
		"adjustments", len(result.Adjustments),
		"matched", result.Matched,
		"unknown", len(result.Unknown),
		"uncounted", len(result.Uncounted),
	)
	for _, sku := range result.Unknown {
		logger.Warn("counted sku has no stock record", "sku", sku)
	}

	if dryRun || !result.HasChanges() {
		return result, nil
	}

	entry := AuditEntry{
		ID:          uuid.New().String(),
		Actor:       actor,
		At:          now,
		Adjustments: result.Adjustments,
		Unknown:     result.Unknown,
	}
	if recorder, ok := s.Stock.(AtomicRecorder); ok {
		if err := recorder.ApplyAndRecord(ctx, result.Adjustments, entry); err != nil {
			return result, fmt.Errorf("apply adjustments: %w", err)
		}
		logger.Info("stock take applied", "audit_id", entry.ID)
		return result, nil
	}

	if err := s.Stock.Apply(ctx, result.Adjustments, now); err != nil {
		return result, fmt.Errorf("apply adjustments: %w", err)
	}
	if s.Audit == nil {
		logger.Warn("no audit log configured, adjustments applied without audit entry")
		return result, nil
	}
	if err := s.Audit.Append(ctx, entry); err != nil {
		logger.Error("adjustments applied but audit entry not stored", "audit_id", entry.ID, "error", err)
		return result, fmt.Errorf("append audit entry: %w", err)
	}
	logger.Info("stock take applied", "audit_id", entry.ID)
	return result, nil
}

// Import records stock levels, typically from a goods-received file.
// Existing SKUs get the imported quantity; others are added.
func (s *Service) Import(ctx context.Context, records []StockRecord) (int, error) {
	if s.Stock == nil {
		return 0, errors.New("stock repository is not configured")
	}
	if len(records) == 0 {
		return 0, errors.New("no stock records to import")
	}

	now := s.now()
	normalized := make([]StockRecord, 0, len(records))
	for _, rec := range records {
		rec.SKU = NormalizeSKU(rec.SKU)
		rec.Name = strings.TrimSpace(rec.Name)
		rec.UpdatedAt = now
		normalized = append(normalized, rec)
	}
	if err := validateRecords(normalized); err != nil {
		return 0, err
	}
	if err := s.Stock.Upsert(ctx, normalized); err != nil {
		return 0, fmt.Errorf("import stock: %w", err)
	}
	s.logger().Info("stock imported", "records", len(normalized))
	return len(normalized), nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
