// Package catalog provides the static, read-only table of offerings that
// drives the build configurator.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/hwdepot/rigbuilder/category"
)

//go:embed assets/catalog.yaml
var embeddedCatalog []byte

// DefaultSearchCacheSize bounds the number of memoised search results.
const DefaultSearchCacheSize = 256

var (
	embeddedOnce    sync.Once
	embeddedEntries map[category.Category]Entry
	embeddedErr     error
)

type rawOffering struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	Price        string `yaml:"price"`
	Availability string `yaml:"availability"`
	Weight       int    `yaml:"weight,omitempty"`
}

type rawEntry struct {
	Filters   []string      `yaml:"filters"`
	Offerings []rawOffering `yaml:"offerings"`
}

type searchKey struct {
	category category.Category
	filter   string
	query    string
}

// Catalog serves entries and cached searches over a fixed set of offerings.
type Catalog struct {
	entries map[category.Category]Entry
	cache   *lru.Cache[searchKey, []Offering]
}

// NewEmbedded returns the catalog shipped with the binary. The asset is
// parsed once per process; a malformed asset panics.
func NewEmbedded() *Catalog {
	embeddedOnce.Do(func() {
		embeddedEntries, embeddedErr = Parse(embeddedCatalog)
	})
	if embeddedErr != nil {
		panic(fmt.Sprintf("load embedded catalog: %v", embeddedErr))
	}
	c, err := New(embeddedEntries, DefaultSearchCacheSize)
	if err != nil {
		panic(fmt.Sprintf("load embedded catalog: %v", err))
	}
	return c
}

// New builds a catalog over entries. Categories missing from entries get an
// empty entry so every category can be opened in the picker.
func New(entries map[category.Category]Entry, cacheSize int) (*Catalog, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultSearchCacheSize
	}
	cache, err := lru.New[searchKey, []Offering](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("init search cache: %w", err)
	}

	copied := make(map[category.Category]Entry, len(category.All()))
	for _, c := range category.All() {
		entry, ok := entries[c]
		if !ok {
			entry = Entry{Category: c}
		}
		entry.Category = c
		entry.SubTypeFilters = withAllFilter(entry.SubTypeFilters)
		entry.Offerings = append([]Offering(nil), entry.Offerings...)
		copied[c] = entry
	}
	return &Catalog{entries: copied, cache: cache}, nil
}

// Parse decodes a YAML catalog document keyed by category name.
func Parse(data []byte) (map[category.Category]Entry, error) {
	var raw map[string]rawEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	entries := make(map[category.Category]Entry, len(raw))
	seen := make(map[string]bool)
	for name, re := range raw {
		c, err := category.Parse(name)
		if err != nil {
			return nil, err
		}
		if _, dup := entries[c]; dup {
			return nil, fmt.Errorf("category %s listed more than once", c)
		}
		entry := Entry{
			Category:       c,
			SubTypeFilters: withAllFilter(re.Filters),
		}
		for _, ro := range re.Offerings {
			o, err := ro.toOffering(c)
			if err != nil {
				return nil, fmt.Errorf("category %s: %w", c, err)
			}
			if seen[o.ID] {
				return nil, fmt.Errorf("duplicate offering id %q", o.ID)
			}
			seen[o.ID] = true
			entry.Offerings = append(entry.Offerings, o)
		}
		entries[c] = entry
	}
	return entries, nil
}

func (ro rawOffering) toOffering(c category.Category) (Offering, error) {
	id := strings.TrimSpace(ro.ID)
	if id == "" {
		return Offering{}, errors.New("offering id is required")
	}
	name := strings.TrimSpace(ro.Name)
	if name == "" {
		return Offering{}, fmt.Errorf("offering %s: name is required", id)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(ro.Price))
	if err != nil {
		return Offering{}, fmt.Errorf("offering %s: parse price: %w", id, err)
	}
	if price.IsNegative() {
		return Offering{}, fmt.Errorf("offering %s: price must not be negative", id)
	}
	availability, err := ParseAvailability(ro.Availability)
	if err != nil {
		return Offering{}, fmt.Errorf("offering %s: %w", id, err)
	}
	return Offering{
		ID:                id,
		Category:          c,
		Name:              name,
		Description:       strings.TrimSpace(ro.Description),
		UnitPrice:         price,
		Availability:      availability,
		PerformanceWeight: ClampWeight(ro.Weight),
	}, nil
}

// ClampWeight bounds a performance weight to [0, 100].
func ClampWeight(w int) int {
	if w < 0 {
		return 0
	}
	if w > 100 {
		return 100
	}
	return w
}

// Categories returns every category in build order.
func (c *Catalog) Categories() []category.Category {
	return category.All()
}

// Entry returns the picker data for a category.
func (c *Catalog) Entry(cat category.Category) (Entry, error) {
	entry, ok := c.entries[cat]
	if !ok {
		return Entry{}, fmt.Errorf("unknown category %q", cat)
	}
	entry.SubTypeFilters = append([]string(nil), entry.SubTypeFilters...)
	entry.Offerings = append([]Offering(nil), entry.Offerings...)
	return entry, nil
}

// Find looks up an offering by id within a category.
func (c *Catalog) Find(cat category.Category, id string) (Offering, error) {
	entry, ok := c.entries[cat]
	if !ok {
		return Offering{}, fmt.Errorf("unknown category %q", cat)
	}
	id = strings.TrimSpace(id)
	for _, o := range entry.Offerings {
		if strings.EqualFold(o.ID, id) {
			return o, nil
		}
	}
	return Offering{}, fmt.Errorf("offering %q not found in %s", id, cat)
}

// Search returns the offerings of cat matching both filter and query.
func (c *Catalog) Search(cat category.Category, filter, query string) ([]Offering, error) {
	entry, ok := c.entries[cat]
	if !ok {
		return nil, fmt.Errorf("unknown category %q", cat)
	}

	key := searchKey{
		category: cat,
		filter:   strings.ToLower(strings.TrimSpace(filter)),
		query:    strings.ToLower(strings.TrimSpace(query)),
	}
	if cached, ok := c.cache.Get(key); ok {
		return append([]Offering(nil), cached...), nil
	}

	matched := Filter(entry.Offerings, filter, query)
	c.cache.Add(key, matched)
	return append([]Offering(nil), matched...), nil
}

func withAllFilter(filters []string) []string {
	out := []string{AllFilter}
	for _, f := range filters {
		f = strings.TrimSpace(f)
		if f == "" || strings.EqualFold(f, AllFilter) {
			continue
		}
		out = append(out, f)
	}
	return out
}
