package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hwdepot/rigbuilder/category"
)

// Availability is display-only stock information; it never blocks selection.
type Availability string

// Supported availability states.
const (
	Available Availability = "available"
	SoldOut   Availability = "sold_out"
	PreOrder  Availability = "pre_order"
)

// ParseAvailability normalizes the catalog spelling of an availability state.
func ParseAvailability(value string) (Availability, error) {
	switch strings.ToLower(strings.NewReplacer("-", "_", " ", "_").Replace(strings.TrimSpace(value))) {
	case "", string(Available), "in_stock":
		return Available, nil
	case string(SoldOut), "out_of_stock":
		return SoldOut, nil
	case string(PreOrder), "preorder":
		return PreOrder, nil
	default:
		return "", fmt.Errorf("unknown availability %q", value)
	}
}

// Label returns the storefront badge text.
func (a Availability) Label() string {
	switch a {
	case SoldOut:
		return "Sold out"
	case PreOrder:
		return "Pre-order"
	default:
		return "Available"
	}
}

// Offering is a purchasable catalog entry for one category.
type Offering struct {
	ID                string
	Category          category.Category
	Name              string
	Description       string
	UnitPrice         decimal.Decimal
	Availability      Availability
	PerformanceWeight int // 0-100, zero when the catalog omits it
}

// Entry is the picker data for one category.
type Entry struct {
	Category       category.Category
	SubTypeFilters []string // always starts with AllFilter
	Offerings      []Offering
}
