// Package picker implements the modal used to browse one category of the
// catalog and commit a chosen offering into the build.
package picker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hwdepot/rigbuilder/category"
	"github.com/hwdepot/rigbuilder/internal/catalog"
)

// ErrClosed is returned by operations that need an open dialog.
var ErrClosed = errors.New("picker: dialog is closed")

// Source supplies the offerings shown by the dialog.
type Source interface {
	Entry(cat category.Category) (catalog.Entry, error)
	Search(cat category.Category, filter, query string) ([]catalog.Offering, error)
}

// Selector commits a chosen offering. Satisfied by *build.Builder.
type Selector interface {
	Select(ctx context.Context, cat category.Category, offering catalog.Offering) error
}

// Dialog is closed until Open is called. Filter and query change
// independently while open; Choose and Close return it to closed.
type Dialog struct {
	Logger   *slog.Logger
	Source   Source
	Selector Selector

	open     bool
	category category.Category
	filters  []string
	filter   string
	query    string
}

func New(source Source, selector Selector, logger *slog.Logger) *Dialog {
	return &Dialog{Source: source, Selector: selector, Logger: logger}
}

// Open shows cat with the catch-all filter and an empty query.
func (d *Dialog) Open(cat category.Category) error {
	if d.Source == nil {
		return errors.New("picker: no catalog configured")
	}
	entry, err := d.Source.Entry(cat)
	if err != nil {
		return err
	}
	d.open = true
	d.category = cat
	d.filters = entry.SubTypeFilters
	d.filter = catalog.AllFilter
	d.query = ""
	d.logger().Debug("picker opened", "category", cat)
	return nil
}

func (d *Dialog) IsOpen() bool {
	return d.open
}

func (d *Dialog) Category() category.Category {
	return d.category
}

// Filters lists the sub-type tags offered for the open category.
func (d *Dialog) Filters() []string {
	return append([]string(nil), d.filters...)
}

func (d *Dialog) Filter() string {
	return d.filter
}

func (d *Dialog) Query() string {
	return d.query
}

// SetFilter changes the sub-type filter. Tags outside the category's list
// are accepted since matching is textual.
func (d *Dialog) SetFilter(filter string) error {
	if !d.open {
		return ErrClosed
	}
	if filter == "" {
		filter = catalog.AllFilter
	}
	d.filter = filter
	return nil
}

func (d *Dialog) SetQuery(query string) error {
	if !d.open {
		return ErrClosed
	}
	d.query = query
	return nil
}

// Visible returns the offerings matching both the filter and the query.
func (d *Dialog) Visible() ([]catalog.Offering, error) {
	if !d.open {
		return nil, ErrClosed
	}
	return d.Source.Search(d.category, d.filter, d.query)
}

// Choose commits the visible row at index and closes the dialog. On error
// the dialog stays open and the build is unchanged.
func (d *Dialog) Choose(ctx context.Context, index int) (catalog.Offering, error) {
	visible, err := d.Visible()
	if err != nil {
		return catalog.Offering{}, err
	}
	if index < 0 || index >= len(visible) {
		return catalog.Offering{}, fmt.Errorf("picker: row %d out of range (%d visible)", index, len(visible))
	}
	if d.Selector == nil {
		return catalog.Offering{}, errors.New("picker: no selector configured")
	}

	chosen := visible[index]
	if err := d.Selector.Select(ctx, d.category, chosen); err != nil {
		return catalog.Offering{}, err
	}
	d.logger().Info("offering chosen", "category", d.category, "offering", chosen.ID)
	d.Close()
	return chosen, nil
}

// Close dismisses the dialog without touching the build.
func (d *Dialog) Close() {
	d.open = false
	d.category = ""
	d.filters = nil
	d.filter = ""
	d.query = ""
}

func (d *Dialog) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
