// Package stocktake diffs a physical count against recorded stock, applies
// the corrections and keeps an audit trail of every applied count.
package stocktake

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// NormalizeSKU is the form SKUs are compared in.
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// Reconcile compares counted quantities with recorded ones. Every mismatch
// becomes an Adjustment; results are sorted by SKU.
func Reconcile(recorded []StockRecord, counted map[string]int, actor string, now time.Time) Result {
	result := Result{Actor: actor, At: now}

	counts := make(map[string]int, len(counted))
	for sku, qty := range counted {
		counts[NormalizeSKU(sku)] = qty
	}

	known := make(map[string]bool, len(recorded))
	for _, rec := range recorded {
		sku := NormalizeSKU(rec.SKU)
		known[sku] = true
		qty, ok := counts[sku]
		if !ok {
			result.Uncounted = append(result.Uncounted, sku)
			continue
		}
		if qty == rec.Quantity {
			result.Matched++
			continue
		}
		result.Adjustments = append(result.Adjustments, Adjustment{
			SKU:      sku,
			Name:     rec.Name,
			Recorded: rec.Quantity,
			Counted:  qty,
			Delta:    qty - rec.Quantity,
		})
	}
	for sku := range counts {
		if !known[sku] {
			result.Unknown = append(result.Unknown, sku)
		}
	}

	sort.Slice(result.Adjustments, func(i, j int) bool { return result.Adjustments[i].SKU < result.Adjustments[j].SKU })
	sort.Strings(result.Unknown)
	sort.Strings(result.Uncounted)
	return result
}

// ParseCounts reads a YAML mapping of SKU to counted quantity.
func ParseCounts(data []byte) (map[string]int, error) {
	var raw map[string]int
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode counts: %w", err)
	}
	counts := make(map[string]int, len(raw))
	for sku, qty := range raw {
		normalized := NormalizeSKU(sku)
		if normalized == "" {
			return nil, errors.New("count with empty sku")
		}
		if qty < 0 {
			return nil, fmt.Errorf("sku %s: negative count %d", normalized, qty)
		}
		if _, dup := counts[normalized]; dup {
			return nil, fmt.Errorf("sku %s counted twice", normalized)
		}
		counts[normalized] = qty
	}
	return counts, nil
}

// LoadCounts reads a counts file from disk.
func LoadCounts(path string) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read counts file: %w", err)
	}
	return ParseCounts(data)
}

type stockLine struct {
	SKU      string `yaml:"sku"`
	Name     string `yaml:"name"`
	Quantity int    `yaml:"quantity"`
}

// ParseStock reads a YAML list of recorded stock lines
// (sku, name, quantity).
func ParseStock(data []byte) ([]StockRecord, error) {
	var lines []stockLine
	if err := yaml.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("decode stock: %w", err)
	}
	records := make([]StockRecord, 0, len(lines))
	for _, l := range lines {
		records = append(records, StockRecord{
			SKU:      NormalizeSKU(l.SKU),
			Name:     strings.TrimSpace(l.Name),
			Quantity: l.Quantity,
		})
	}
	if err := validateRecords(records); err != nil {
		return nil, err
	}
	return records, nil
}

// LoadStock reads a stock file from disk.
func LoadStock(path string) ([]StockRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stock file: %w", err)
	}
	return ParseStock(data)
}

func validateRecords(records []StockRecord) error {
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if rec.SKU == "" {
			return errors.New("stock record with empty sku")
		}
		if rec.Quantity < 0 {
			return fmt.Errorf("sku %s: negative quantity %d", rec.SKU, rec.Quantity)
		}
		if seen[rec.SKU] {
			return fmt.Errorf("sku %s listed twice", rec.SKU)
		}
		seen[rec.SKU] = true
	}
	return nil
}
