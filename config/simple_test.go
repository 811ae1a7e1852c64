package simple

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwdepot/rigbuilder/category"
	"github.com/hwdepot/rigbuilder/internal/checkout"
	"github.com/hwdepot/rigbuilder/internal/logging"
	"github.com/hwdepot/rigbuilder/internal/orders"
	"github.com/hwdepot/rigbuilder/internal/pricing"
	"github.com/hwdepot/rigbuilder/internal/setup"
	"github.com/hwdepot/rigbuilder/internal/storage"
)

func testConfig(t *testing.T) setup.Config {
	t.Helper()
	cfg := setup.Defaults()
	cfg.StateDir = t.TempDir()
	cfg.Orders.Dir = cfg.StateDir + "/orders"
	cfg.Stock.Dir = cfg.StateDir + "/stock"
	return cfg
}

func TestBuildSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	app, err := Open(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	o, err := app.Catalog.Find(category.Memory, "mem-ddr5-6000-96")
	require.NoError(t, err)
	require.NoError(t, app.Builder.Select(ctx, category.Memory, o))
	require.NoError(t, app.Builder.SetQuantity(ctx, category.Memory, 1))
	require.NoError(t, app.Close())

	reopened, err := Open(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, 2, reopened.Builder.State().Selection(category.Memory).Quantity())

	summary := reopened.Checkout.Summary(ctx, checkout.Shipping, pricing.NoDiscount)
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, "1167", summary.GrandTotal.String())
}

func TestPlaceOrderArchivesLocally(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	app, err := Open(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	defer app.Close()

	o, err := app.Catalog.Find(category.Storage, "ssd-990-pro-4tb")
	require.NoError(t, err)
	require.NoError(t, app.Builder.Select(ctx, category.Storage, o))

	svc, err := app.Orders()
	require.NoError(t, err)
	assert.Nil(t, svc.Publisher)

	order, err := svc.Place(ctx, app.Checkout.Summary(ctx, checkout.Pickup, pricing.NoDiscount), orders.Customer{Name: "Dana"})
	require.NoError(t, err)

	archived, err := svc.Archive.Get(order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, archived.ID)
	assert.False(t, app.Builder.State().IsEmpty())
}

func TestStocktakeFileBackend(t *testing.T) {
	ctx := context.Background()
	app, err := Open(ctx, testConfig(t), logging.Discard())
	require.NoError(t, err)
	defer app.Close()

	svc, err := app.Stocktake(ctx)
	require.NoError(t, err)
	result, err := svc.Run(ctx, map[string]int{"A": 1}, "erin", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, result.Unknown)
}

func TestMemoryBackend(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Storage.Backend = storage.BackendMemory

	app, err := Open(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	defer app.Close()
	assert.True(t, app.Builder.State().IsEmpty())
}
