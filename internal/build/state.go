package build

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hwdepot/rigbuilder/category"
	"github.com/hwdepot/rigbuilder/internal/catalog"
)

// State maps every category to its current selection.
type State struct {
	selections map[category.Category]Selection
}

// NewState returns a state in which every category is empty.
func NewState() State {
	selections := make(map[category.Category]Selection, len(category.All()))
	for _, c := range category.All() {
		selections[c] = EmptySelection(c.Kind())
	}
	return State{selections: selections}
}

// Selection returns what cat currently holds. A zero State reads as empty.
func (s State) Selection(cat category.Category) Selection {
	if sel, ok := s.selections[cat]; ok {
		return sel
	}
	return EmptySelection(cat.Kind())
}

// IsEmpty reports whether no category holds anything.
func (s State) IsEmpty() bool {
	for _, sel := range s.selections {
		if !sel.IsEmpty() {
			return false
		}
	}
	return true
}

// Total is the sum of unit price times quantity across all categories.
func (s State) Total() decimal.Decimal {
	total := decimal.Zero
	for _, c := range category.All() {
		total = total.Add(s.Selection(c).Total())
	}
	return total
}

// Equal reports whether both states hold the same selections.
func (s State) Equal(o State) bool {
	for _, c := range category.All() {
		if !s.Selection(c).equal(o.Selection(c)) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := NewState()
	for c, sel := range s.selections {
		out.selections[c] = sel.clone()
	}
	return out
}

func (s State) with(cat category.Category, sel Selection) State {
	out := s.Clone()
	out.selections[cat] = sel
	return out
}

type itemJSON struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	Description       string               `json:"description"`
	UnitPrice         json.Number          `json:"unitPrice"`
	Availability      catalog.Availability `json:"availability"`
	PerformanceWeight int                  `json:"performanceWeight"`
	Quantity          *int                 `json:"quantity,omitempty"`
}

func encodeItem(item Item) itemJSON {
	return itemJSON{
		ID:                item.ID,
		Name:              item.Name,
		Description:       item.Description,
		UnitPrice:         json.Number(item.UnitPrice.String()),
		Availability:      item.Availability,
		PerformanceWeight: item.PerformanceWeight,
	}
}

func (ij itemJSON) decode() (Item, error) {
	if ij.UnitPrice == "" {
		return Item{}, fmt.Errorf("item %q: unitPrice is required", ij.ID)
	}
	price, err := decimal.NewFromString(ij.UnitPrice.String())
	if err != nil {
		return Item{}, fmt.Errorf("item %q: parse unitPrice: %w", ij.ID, err)
	}
	if price.IsNegative() {
		return Item{}, fmt.Errorf("item %q: %s", ij.ID, ErrMsgNegativePrice)
	}
	availability, err := catalog.ParseAvailability(string(ij.Availability))
	if err != nil {
		return Item{}, fmt.Errorf("item %q: %w", ij.ID, err)
	}
	return Item{
		ID:                ij.ID,
		Name:              ij.Name,
		Description:       ij.Description,
		UnitPrice:         price,
		Availability:      availability,
		PerformanceWeight: catalog.ClampWeight(ij.PerformanceWeight),
	}, nil
}

// MarshalJSON writes the snapshot document: every category name maps to
// null, a single item object or, for multi categories, an array of items.
func (s State) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(category.All()))
	for _, c := range category.All() {
		sel := s.Selection(c)
		switch {
		case c.Kind() == category.KindMulti:
			if sel.IsEmpty() {
				doc[c.String()] = nil
				continue
			}
			items := make([]itemJSON, 0, sel.Len())
			for _, item := range sel.Items() {
				items = append(items, encodeItem(item))
			}
			doc[c.String()] = items
		case sel.IsEmpty():
			doc[c.String()] = nil
		default:
			item, _ := sel.Item()
			encoded := encodeItem(item)
			if c.HasQuantity() {
				q := sel.Quantity()
				encoded.Quantity = &q
			}
			doc[c.String()] = encoded
		}
	}
	return json.Marshal(doc)
}

// UnmarshalJSON reads a snapshot document. The shape of every value must
// match its category's kind; missing categories are empty. Unknown keys and
// shape mismatches are errors, leaving s untouched.
func (s *State) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode build snapshot: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("decode build snapshot: document is null")
	}

	next := NewState()
	for name, raw := range doc {
		c := category.Category(name)
		if !c.IsValid() {
			return fmt.Errorf("decode build snapshot: unknown category %q", name)
		}
		sel, err := decodeSelection(c, raw)
		if err != nil {
			return fmt.Errorf("decode build snapshot: %s: %w", c, err)
		}
		next.selections[c] = sel
	}
	*s = next
	return nil
}

func decodeSelection(c category.Category, raw json.RawMessage) (Selection, error) {
	trimmed := bytes.TrimSpace(raw)
	empty := EmptySelection(c.Kind())
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return empty, nil
	}

	if c.Kind() == category.KindMulti {
		if trimmed[0] != '[' {
			return empty, fmt.Errorf("expected an array for a multi category")
		}
		var encoded []itemJSON
		if err := json.Unmarshal(trimmed, &encoded); err != nil {
			return empty, err
		}
		sel := empty
		for _, ij := range encoded {
			item, err := ij.decode()
			if err != nil {
				return empty, err
			}
			sel = sel.with(item)
		}
		return sel, nil
	}

	if trimmed[0] != '{' {
		return empty, fmt.Errorf("expected an object for a single category")
	}
	var encoded itemJSON
	if err := json.Unmarshal(trimmed, &encoded); err != nil {
		return empty, err
	}
	item, err := encoded.decode()
	if err != nil {
		return empty, err
	}
	sel := empty.with(item)
	if c.HasQuantity() && encoded.Quantity != nil {
		sel = sel.withQuantityDelta(*encoded.Quantity - 1)
	}
	return sel, nil
}

// Encode serialises s into the snapshot document.
func Encode(s State) ([]byte, error) {
	return json.Marshal(s)
}

// Decode parses a snapshot document.
func Decode(data []byte) (State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, err
	}
	return s, nil
}
