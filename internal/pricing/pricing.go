// Package pricing holds the discount rules shared by the storefront, the
// inventory console and checkout.
package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DiscountType selects how a discount value is interpreted.
type DiscountType string

const (
	DiscountNone       DiscountType = "none"
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

var hundred = decimal.NewFromInt(100)

// ParseDiscountType maps user input onto a DiscountType. An empty value means none.
func ParseDiscountType(value string) (DiscountType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none":
		return DiscountNone, nil
	case "percentage", "percent", "pct", "%":
		return DiscountPercentage, nil
	case "fixed", "amount", "flat":
		return DiscountFixed, nil
	default:
		return DiscountNone, fmt.Errorf("unknown discount type %q", value)
	}
}

// EffectivePrice returns the unit price after applying the discount.
//
// Percentage values are clamped into [0, 100] and negative fixed amounts are
// treated as zero, so the result always lies in [0, base] for a
// non-negative base.
func EffectivePrice(base decimal.Decimal, kind DiscountType, value decimal.Decimal) decimal.Decimal {
	switch kind {
	case DiscountPercentage:
		pct := clamp(value, decimal.Zero, hundred)
		return base.Mul(hundred.Sub(pct)).Div(hundred)
	case DiscountFixed:
		if value.IsNegative() {
			value = decimal.Zero
		}
		return decimal.Max(decimal.Zero, base.Sub(value))
	default:
		return base
	}
}

// Discount bundles a discount descriptor.
type Discount struct {
	Type  DiscountType
	Value decimal.Decimal
}

// NoDiscount is the zero discount.
var NoDiscount = Discount{Type: DiscountNone}

// Apply returns base with the discount applied.
func (d Discount) Apply(base decimal.Decimal) decimal.Decimal {
	return EffectivePrice(base, d.Type, d.Value)
}

// IsZero reports whether the discount leaves every price unchanged.
func (d Discount) IsZero() bool {
	switch d.Type {
	case DiscountPercentage, DiscountFixed:
		return !d.Value.IsPositive()
	default:
		return true
	}
}

func (d Discount) String() string {
	switch d.Type {
	case DiscountPercentage:
		return d.Value.String() + "%"
	case DiscountFixed:
		return "-" + d.Value.StringFixed(2)
	default:
		return "none"
	}
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
