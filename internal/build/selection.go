package build

import (
	"github.com/shopspring/decimal"

	"github.com/hwdepot/rigbuilder/category"
	"github.com/hwdepot/rigbuilder/internal/catalog"
)

// Item is the copy of an offering held in a selection.
type Item struct {
	ID                string
	Name              string
	Description       string
	UnitPrice         decimal.Decimal
	Availability      catalog.Availability
	PerformanceWeight int
}

// ItemFromOffering copies the persisted fields of an offering.
func ItemFromOffering(o catalog.Offering) Item {
	return Item{
		ID:                o.ID,
		Name:              o.Name,
		Description:       o.Description,
		UnitPrice:         o.UnitPrice,
		Availability:      o.Availability,
		PerformanceWeight: catalog.ClampWeight(o.PerformanceWeight),
	}
}

func (i Item) equal(o Item) bool {
	return i.ID == o.ID &&
		i.Name == o.Name &&
		i.Description == o.Description &&
		i.UnitPrice.Equal(o.UnitPrice) &&
		i.Availability == o.Availability &&
		i.PerformanceWeight == o.PerformanceWeight
}

// Selection is what one category currently holds. Its shape is fixed by the
// category's Kind: single and quantified selections hold at most one item,
// multi selections hold an ordered list.
type Selection struct {
	kind     category.Kind
	item     *Item
	quantity int
	items    []Item
}

// EmptySelection returns an empty selection of the given shape.
func EmptySelection(kind category.Kind) Selection {
	return Selection{kind: kind}
}

func (s Selection) Kind() category.Kind {
	return s.kind
}

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool {
	if s.kind == category.KindMulti {
		return len(s.items) == 0
	}
	return s.item == nil
}

// Item returns the single selected item. Always false for multi selections.
func (s Selection) Item() (Item, bool) {
	if s.kind == category.KindMulti || s.item == nil {
		return Item{}, false
	}
	return *s.item, true
}

// Quantity is the multiplier of a single selection: the stored quantity for
// quantified selections, 1 for plain single selections and 0 when empty or
// multi.
func (s Selection) Quantity() int {
	if s.kind == category.KindMulti || s.item == nil {
		return 0
	}
	if s.kind == category.KindSingleWithQuantity {
		return s.quantity
	}
	return 1
}

// Items returns the selected list for multi selections, or the single item
// as a one-element list.
func (s Selection) Items() []Item {
	if s.kind == category.KindMulti {
		return append([]Item(nil), s.items...)
	}
	if s.item == nil {
		return nil
	}
	return []Item{*s.item}
}

// Len returns the number of selected items.
func (s Selection) Len() int {
	if s.kind == category.KindMulti {
		return len(s.items)
	}
	if s.item == nil {
		return 0
	}
	return 1
}

// Total is the sum of unit price times quantity over the selection.
func (s Selection) Total() decimal.Decimal {
	total := decimal.Zero
	if s.kind == category.KindMulti {
		for _, item := range s.items {
			total = total.Add(item.UnitPrice)
		}
		return total
	}
	if s.item == nil {
		return total
	}
	return s.item.UnitPrice.Mul(decimal.NewFromInt(int64(s.Quantity())))
}

func (s Selection) with(item Item) Selection {
	switch s.kind {
	case category.KindMulti:
		items := make([]Item, len(s.items), len(s.items)+1)
		copy(items, s.items)
		return Selection{kind: s.kind, items: append(items, item)}
	case category.KindSingleWithQuantity:
		return Selection{kind: s.kind, item: &item, quantity: 1}
	default:
		return Selection{kind: s.kind, item: &item}
	}
}

func (s Selection) without(index int) (Selection, bool) {
	if s.kind != category.KindMulti {
		return Selection{kind: s.kind}, true
	}
	if index < 0 || index >= len(s.items) {
		return s, false
	}
	items := make([]Item, 0, len(s.items)-1)
	items = append(items, s.items[:index]...)
	items = append(items, s.items[index+1:]...)
	return Selection{kind: s.kind, items: items}, true
}

func (s Selection) withQuantityDelta(delta int) Selection {
	if s.item == nil {
		return s
	}
	q := s.quantity + delta
	if q < 1 {
		q = 1
	}
	item := *s.item
	return Selection{kind: s.kind, item: &item, quantity: q}
}

func (s Selection) clone() Selection {
	out := Selection{kind: s.kind, quantity: s.quantity}
	if s.item != nil {
		item := *s.item
		out.item = &item
	}
	if s.items != nil {
		out.items = append([]Item(nil), s.items...)
	}
	return out
}

func (s Selection) equal(o Selection) bool {
	if s.kind != o.kind || s.Len() != o.Len() || s.Quantity() != o.Quantity() {
		return false
	}
	a, b := s.Items(), o.Items()
	for i := range a {
		if !a[i].equal(b[i]) {
			return false
		}
	}
	return true
}
