package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/hwdepot/rigbuilder/category"
	"github.com/hwdepot/rigbuilder/internal/catalog"
	"github.com/hwdepot/rigbuilder/internal/storage"
)

// Builder owns the in-progress build. Every successful mutation is written
// through to Store under Key before the call returns.
type Builder struct {
	Logger *slog.Logger
	Store  storage.KeyValue
	Key    string

	mu    sync.Mutex
	state State
}

func NewBuilder(store storage.KeyValue, key string, logger *slog.Logger) *Builder {
	return &Builder{
		Logger: logger,
		Store:  store,
		Key:    key,
		state:  NewState(),
	}
}

// Load replaces the in-memory state with the persisted snapshot. Missing or
// unreadable snapshots yield an empty build; failures are logged only.
func (b *Builder) Load(ctx context.Context) State {
	loaded := ReadSnapshot(ctx, b.Store, b.Key, b.logger())

	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = loaded
	return b.state.Clone()
}

// State returns a copy of the current build.
func (b *Builder) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current().Clone()
}

// Select attaches offering to cat. Single categories are replaced, with the
// quantity reset to 1 where one is carried; multi categories append.
func (b *Builder) Select(ctx context.Context, cat category.Category, offering catalog.Offering) error {
	if !cat.IsValid() {
		return NewInvalidArgumentf("%s: %q", ErrMsgUnknownCategory, cat)
	}
	if offering.Category != "" && offering.Category != cat {
		return NewInvalidArgumentf("%s: %s is a %s offering", ErrMsgCategoryMismatch, offering.ID, offering.Category)
	}
	if strings.TrimSpace(offering.ID) == "" {
		return NewInvalidArgument(ErrMsgOfferingIDRequired)
	}
	if offering.UnitPrice.IsNegative() {
		return NewInvalidArgument(ErrMsgNegativePrice)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.current()
	next := current.with(cat, current.Selection(cat).with(ItemFromOffering(offering)))
	if err := b.commit(ctx, next); err != nil {
		return err
	}
	b.logger().Debug("offering selected", "category", cat, "offering", offering.ID)
	return nil
}

// Remove drops the entry at index from a multi category, or clears a single
// category in which case index is ignored.
func (b *Builder) Remove(ctx context.Context, cat category.Category, index int) error {
	if !cat.IsValid() {
		return NewInvalidArgumentf("%s: %q", ErrMsgUnknownCategory, cat)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.current()
	sel, ok := current.Selection(cat).without(index)
	if !ok {
		return NewInvalidArgumentf("%s: %d (have %d)", ErrMsgIndexOutOfRange, index, current.Selection(cat).Len())
	}
	if err := b.commit(ctx, current.with(cat, sel)); err != nil {
		return err
	}
	b.logger().Debug("selection removed", "category", cat, "index", index)
	return nil
}

// SetQuantity adds delta to the quantity of a quantified category, clamping
// at 1. It does nothing when the category is empty.
func (b *Builder) SetQuantity(ctx context.Context, cat category.Category, delta int) error {
	if !cat.IsValid() {
		return NewInvalidArgumentf("%s: %q", ErrMsgUnknownCategory, cat)
	}
	if !cat.HasQuantity() {
		return NewFailedPrecondition(fmt.Sprintf("%s: %s", ErrMsgQuantityNotSupported, cat))
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.current()
	sel := current.Selection(cat)
	if sel.IsEmpty() {
		return nil
	}
	updated := sel.withQuantityDelta(delta)
	if err := b.commit(ctx, current.with(cat, updated)); err != nil {
		return err
	}
	b.logger().Debug("quantity changed", "category", cat, "quantity", updated.Quantity())
	return nil
}

// ResetAll clears every selection and removes the persisted snapshot.
func (b *Builder) ResetAll(ctx context.Context) error {
	if b.Store == nil {
		return errors.New("build store is not configured")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.Store.Remove(ctx, b.Key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("remove build snapshot: %w", err)
	}
	b.state = NewState()
	b.logger().Info("build reset")
	return nil
}

// commit persists next and only then makes it current. Callers hold mu.
func (b *Builder) commit(ctx context.Context, next State) error {
	if b.Store == nil {
		return errors.New("build store is not configured")
	}
	data, err := Encode(next)
	if err != nil {
		return fmt.Errorf("encode build snapshot: %w", err)
	}
	if err := b.Store.Set(ctx, b.Key, data); err != nil {
		return fmt.Errorf("persist build snapshot: %w", err)
	}
	b.state = next
	return nil
}

func (b *Builder) current() State {
	if b.state.selections == nil {
		b.state = NewState()
	}
	return b.state
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

// ReadSnapshot hydrates a build from kv without writing to it. It never
// fails: an absent, unreadable or malformed snapshot yields an empty State.
func ReadSnapshot(ctx context.Context, kv storage.KeyValue, key string, logger *slog.Logger) State {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("key", key)

	if kv == nil {
		logger.Warn("no build store configured, starting empty")
		return NewState()
	}

	data, err := kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.Debug("no saved build, starting empty")
		} else {
			logger.Warn("read saved build failed, starting empty", "error", err)
		}
		return NewState()
	}

	state, err := Decode(data)
	if err != nil {
		logger.Warn("saved build is corrupt, starting empty", "error", err)
		return NewState()
	}
	return state
}
