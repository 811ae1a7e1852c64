// Package checkout reconstructs the order manifest from a saved build.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hwdepot/rigbuilder/category"
	"github.com/hwdepot/rigbuilder/internal/build"
	"github.com/hwdepot/rigbuilder/internal/pricing"
	"github.com/hwdepot/rigbuilder/internal/storage"
)

// FulfillmentMethod is how the order reaches the customer.
type FulfillmentMethod string

const (
	Pickup   FulfillmentMethod = "pickup"
	Shipping FulfillmentMethod = "shipping"
)

// ParseMethod accepts pickup or shipping; empty means pickup.
func ParseMethod(value string) (FulfillmentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(Pickup), "collect", "store":
		return Pickup, nil
	case string(Shipping), "ship", "delivery":
		return Shipping, nil
	default:
		return "", fmt.Errorf("unknown fulfillment method %q (expected pickup or shipping)", value)
	}
}

// Line is one manifest row.
type Line struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	UnitPrice decimal.Decimal   `json:"unitPrice"`
	Quantity  int               `json:"quantity"`
	Category  category.Category `json:"category"`
}

// Total is unit price times quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Options struct {
	Method      FulfillmentMethod
	DeliveryFee decimal.Decimal
	Discount    pricing.Discount
}

type Summary struct {
	Lines       []Line            `json:"lines"`
	Method      FulfillmentMethod `json:"method"`
	Subtotal    decimal.Decimal   `json:"subtotal"`
	Discount    pricing.Discount  `json:"-"`
	Discounted  decimal.Decimal   `json:"discountedSubtotal"`
	DeliveryFee decimal.Decimal   `json:"deliveryFee"`
	GrandTotal  decimal.Decimal   `json:"grandTotal"`
}

// IsEmpty reports whether the manifest has no lines.
func (s Summary) IsEmpty() bool {
	return len(s.Lines) == 0
}

// Summarize flattens state into manifest lines in category order. Multi
// categories contribute one line per entry; single categories use their
// stored quantity.
func Summarize(state build.State, opts Options) Summary {
	method := opts.Method
	if method == "" {
		method = Pickup
	}

	summary := Summary{
		Method:   method,
		Discount: opts.Discount,
		Subtotal: decimal.Zero,
	}
	for _, c := range category.All() {
		sel := state.Selection(c)
		if sel.IsEmpty() {
			continue
		}
		quantity := 1
		if !c.AllowsMultiple() {
			quantity = sel.Quantity()
		}
		for _, item := range sel.Items() {
			line := Line{
				ID:        item.ID,
				Name:      item.Name,
				UnitPrice: item.UnitPrice,
				Quantity:  quantity,
				Category:  c,
			}
			summary.Lines = append(summary.Lines, line)
			summary.Subtotal = summary.Subtotal.Add(line.Total())
		}
	}

	summary.Discounted = opts.Discount.Apply(summary.Subtotal)
	summary.DeliveryFee = decimal.Zero
	if method == Shipping && opts.DeliveryFee.IsPositive() {
		summary.DeliveryFee = opts.DeliveryFee
	}
	summary.GrandTotal = summary.Discounted.Add(summary.DeliveryFee)
	return summary
}

// Service reads the saved build and prices it. It never writes the build.
type Service struct {
	Logger      *slog.Logger
	Store       storage.KeyValue
	Key         string
	DeliveryFee decimal.Decimal
}

// Summary prices the persisted build for method.
func (s *Service) Summary(ctx context.Context, method FulfillmentMethod, discount pricing.Discount) Summary {
	state := build.ReadSnapshot(ctx, s.Store, s.Key, s.logger())
	summary := Summarize(state, Options{
		Method:      method,
		DeliveryFee: s.DeliveryFee,
		Discount:    discount,
	})
	s.logger().Debug("checkout summarised",
		"lines", len(summary.Lines),
		"method", summary.Method,
		"grand_total", summary.GrandTotal.StringFixed(2),
	)
	return summary
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
