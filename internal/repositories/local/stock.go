package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hwdepot/rigbuilder/internal/stocktake"
)

const stockFile = "stock.json"

// LocalStockRepository keeps stock levels in a single JSON file under BaseDir.
type LocalStockRepository struct {
	BaseDir string
}

// List returns the recorded stock, sorted by SKU. A missing file is an empty stock.
func (rep *LocalStockRepository) List(_ context.Context) ([]stocktake.StockRecord, error) {
	data, err := os.ReadFile(filepath.Join(rep.BaseDir, stockFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var records []stocktake.StockRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", stockFile, err)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].SKU < records[j].SKU })
	return records, nil
}

// Save replaces the recorded stock.
func (rep *LocalStockRepository) Save(_ context.Context, records []stocktake.StockRecord) error {
	if rep.BaseDir == "" {
		return errors.New("base directory is not configured")
	}
	if err := os.MkdirAll(rep.BaseDir, 0o755); err != nil {
		return err
	}

	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(rep.BaseDir, ".stock-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(rep.BaseDir, stockFile))
}

// Upsert merges records into the stock file by SKU.
func (rep *LocalStockRepository) Upsert(ctx context.Context, records []stocktake.StockRecord) error {
	current, err := rep.List(ctx)
	if err != nil {
		return err
	}

	index := make(map[string]int, len(current))
	for i, rec := range current {
		index[stocktake.NormalizeSKU(rec.SKU)] = i
	}
	for _, rec := range records {
		rec.SKU = stocktake.NormalizeSKU(rec.SKU)
		if i, ok := index[rec.SKU]; ok {
			current[i] = rec
			continue
		}
		index[rec.SKU] = len(current)
		current = append(current, rec)
	}
	sort.Slice(current, func(i, j int) bool { return current[i].SKU < current[j].SKU })
	return rep.Save(ctx, current)
}

// Apply sets every adjusted SKU to its counted quantity.
func (rep *LocalStockRepository) Apply(ctx context.Context, adjustments []stocktake.Adjustment, at time.Time) error {
	records, err := rep.List(ctx)
	if err != nil {
		return err
	}

	index := make(map[string]int, len(records))
	for i, rec := range records {
		index[stocktake.NormalizeSKU(rec.SKU)] = i
	}
	for _, adj := range adjustments {
		i, ok := index[stocktake.NormalizeSKU(adj.SKU)]
		if !ok {
			return fmt.Errorf("sku %s has no stock record", adj.SKU)
		}
		records[i].Quantity = adj.Counted
		records[i].UpdatedAt = at
	}
	return rep.Save(ctx, records)
}

// LocalAuditLog writes one JSON file per applied stock take under BaseDir.
type LocalAuditLog struct {
	BaseDir string
}

func (rep *LocalAuditLog) Append(_ context.Context, entry stocktake.AuditEntry) error {
	if rep.BaseDir == "" {
		return errors.New("base directory is not configured")
	}
	if entry.ID == "" {
		return errors.New("audit entry id is required")
	}
	if err := os.MkdirAll(rep.BaseDir, 0o755); err != nil {
		return err
	}

	payload, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	name := entry.At.UTC().Format("20060102T150405Z") + "-" + entry.ID + ".json"
	return os.WriteFile(filepath.Join(rep.BaseDir, name), payload, 0o644)
}

// List returns every audit entry, oldest first.
func (rep *LocalAuditLog) List(_ context.Context) ([]stocktake.AuditEntry, error) {
	entries, err := os.ReadDir(rep.BaseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var log []stocktake.AuditEntry
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(rep.BaseDir, entry.Name()))
		if err != nil {
			return nil, err
		}
		var audit stocktake.AuditEntry
		if err := json.Unmarshal(data, &audit); err != nil {
			return nil, fmt.Errorf("decode %s: %w", entry.Name(), err)
		}
		log = append(log, audit)
	}
	sort.Slice(log, func(i, j int) bool { return log[i].At.Before(log[j].At) })
	return log, nil
}
