package checkout

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwdepot/rigbuilder/category"
	"github.com/hwdepot/rigbuilder/internal/build"
	"github.com/hwdepot/rigbuilder/internal/catalog"
	"github.com/hwdepot/rigbuilder/internal/pricing"
	"github.com/hwdepot/rigbuilder/internal/storage/memory"
)

const key = "rigbuilder.build"

func seed(t *testing.T, store *memory.Store, picks map[category.Category][]string) *build.Builder {
	t.Helper()
	cat := catalog.NewEmbedded()
	b := build.NewBuilder(store, key, nil)
	for _, c := range category.All() {
		for _, id := range picks[c] {
			o, err := cat.Find(c, id)
			require.NoError(t, err)
			require.NoError(t, b.Select(context.Background(), c, o))
		}
	}
	return b
}

func TestParseMethod(t *testing.T) {
	t.Parallel()

	m, err := ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, Pickup, m)

	m, err = ParseMethod("Shipping")
	require.NoError(t, err)
	assert.Equal(t, Shipping, m)

	_, err = ParseMethod("drone")
	require.Error(t, err)
}

func TestMultiCategoryLines(t *testing.T) {
	t.Parallel()

	store := memory.New()
	b := seed(t, store, map[category.Category][]string{
		category.Storage: {"ssd-990-pro-4tb", "ssd-sn850x-2tb"},
	})

	s := Summarize(b.State(), Options{})
	require.Len(t, s.Lines, 2)
	for _, l := range s.Lines {
		assert.Equal(t, 1, l.Quantity)
		assert.Equal(t, category.Storage, l.Category)
	}
	assert.True(t, s.Subtotal.Equal(decimal.NewFromInt(1358)))
	assert.True(t, s.GrandTotal.Equal(decimal.NewFromInt(1358)))
	assert.Equal(t, Pickup, s.Method)
}

func TestLinesFollowCategoryOrderAndQuantity(t *testing.T) {
	t.Parallel()

	store := memory.New()
	b := seed(t, store, map[category.Category][]string{
		category.Accessories: {"acc-thermal-grizzly"},
		category.Memory:      {"mem-ddr5-6000-96"},
		category.Processor:   {"cpu-ryzen-9-9950x3d"},
	})
	require.NoError(t, b.SetQuantity(context.Background(), category.Memory, 1))

	s := Summarize(b.State(), Options{})
	require.Len(t, s.Lines, 3)
	assert.Equal(t, category.Processor, s.Lines[0].Category)
	assert.Equal(t, 1, s.Lines[0].Quantity)
	assert.Equal(t, category.Memory, s.Lines[1].Category)
	assert.Equal(t, 2, s.Lines[1].Quantity)
	assert.True(t, s.Lines[1].Total().Equal(decimal.NewFromInt(1118)))
	assert.Equal(t, category.Accessories, s.Lines[2].Category)
}

func TestDeliveryFeeOnlyForShipping(t *testing.T) {
	t.Parallel()

	store := memory.New()
	b := seed(t, store, map[category.Category][]string{
		category.Graphics: {"gpu-rtx-5060"},
	})
	fee := decimal.RequireFromString("49.00")

	pickup := Summarize(b.State(), Options{Method: Pickup, DeliveryFee: fee})
	assert.True(t, pickup.DeliveryFee.IsZero())
	assert.True(t, pickup.GrandTotal.Equal(decimal.NewFromInt(329)))

	shipping := Summarize(b.State(), Options{Method: Shipping, DeliveryFee: fee})
	assert.True(t, shipping.DeliveryFee.Equal(fee))
	assert.True(t, shipping.GrandTotal.Equal(decimal.NewFromInt(378)))
}

func TestDiscountAppliesToSubtotal(t *testing.T) {
	t.Parallel()

	store := memory.New()
	b := seed(t, store, map[category.Category][]string{
		category.Storage: {"ssd-990-pro-4tb"},
	})

	s := Summarize(b.State(), Options{
		Method:      Shipping,
		DeliveryFee: decimal.NewFromInt(49),
		Discount:    pricing.Discount{Type: pricing.DiscountPercentage, Value: decimal.NewFromInt(10)},
	})
	assert.True(t, s.Subtotal.Equal(decimal.NewFromInt(899)))
	assert.True(t, s.Discounted.Equal(decimal.RequireFromString("809.1")))
	assert.True(t, s.GrandTotal.Equal(decimal.RequireFromString("858.1")))
}

func TestEmptyBuild(t *testing.T) {
	t.Parallel()

	s := Summarize(build.NewState(), Options{Method: Shipping, DeliveryFee: decimal.NewFromInt(49)})
	assert.True(t, s.IsEmpty())
	assert.True(t, s.Subtotal.IsZero())
	assert.True(t, s.GrandTotal.Equal(decimal.NewFromInt(49)))
}

func TestServiceDoesNotMutateSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New()
	seed(t, store, map[category.Category][]string{
		category.Storage: {"ssd-990-pro-4tb", "ssd-sn850x-2tb"},
		category.Memory:  {"mem-ddr5-6000-32"},
	})
	before, err := store.Get(ctx, key)
	require.NoError(t, err)

	svc := &Service{Store: store, Key: key, DeliveryFee: decimal.NewFromInt(49)}
	s := svc.Summary(ctx, Shipping, pricing.NoDiscount)
	assert.Len(t, s.Lines, 3)
	assert.True(t, s.GrandTotal.Equal(decimal.NewFromInt(1536)))

	after, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	reloaded := build.NewBuilder(store, key, nil)
	assert.False(t, reloaded.Load(ctx).IsEmpty())
}

func TestServiceWithCorruptSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Set(ctx, key, []byte("][")))

	svc := &Service{Store: store, Key: key}
	s := svc.Summary(ctx, Pickup, pricing.NoDiscount)
	assert.True(t, s.IsEmpty())
}
