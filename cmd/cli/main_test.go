package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/hwdepot/rigbuilder/internal/checkout"
	"github.com/hwdepot/rigbuilder/internal/orders"
	localrepo "github.com/hwdepot/rigbuilder/internal/repositories/local"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "state_dir: " + filepath.Join(dir, "state") + "\ncheckout:\n  delivery_fee: \"20.00\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, configPath string, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand(newCLI(io.Discard))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", configPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBuildCommandsPersistAcrossInvocations(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, cfg, "", "build", "add", "processor", "cpu-ryzen-9-9950x3d")
	require.NoError(t, err)
	_, err = run(t, cfg, "", "build", "add", "memory", "mem-ddr5-6000-96")
	require.NoError(t, err)
	out, err := run(t, cfg, "", "build", "qty", "memory", "+1")
	require.NoError(t, err)
	assert.Contains(t, out, "quantity: 2")

	out, err = run(t, cfg, "", "build", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "AMD Ryzen 9 9950X3D")
	assert.Contains(t, out, "1867.00 EUR")

	out, err = run(t, cfg, "", "checkout", "--method", "shipping")
	require.NoError(t, err)
	assert.Contains(t, out, "1887.00 EUR")

	_, err = run(t, cfg, "", "build", "reset")
	require.NoError(t, err)
	out, err = run(t, cfg, "", "checkout")
	require.NoError(t, err)
	assert.Contains(t, out, "build is empty")
}

func TestBuildQuantityRejectsSingleCategory(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, cfg, "", "build", "add", "processor", "cpu-ryzen-5-9600x")
	require.NoError(t, err)
	_, err = run(t, cfg, "", "build", "qty", "processor", "+1")
	require.Error(t, err)
}

func TestPickInteractive(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "f Intel\nq 285\n1\n", "pick", "processor")
	require.NoError(t, err)
	assert.Contains(t, out, "Intel Core Ultra 9 285K (629.00 EUR)")

	out, err = run(t, cfg, "", "build", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Intel Core Ultra 9 285K")
}

func TestPickRowOutOfRange(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, cfg, "", "pick", "graphics", "--query", "5090", "--row", "3")
	require.Error(t, err)
}

func TestCheckoutPlaceRequiresName(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, cfg, "", "build", "add", "case", "case-north")
	require.NoError(t, err)
	_, err = run(t, cfg, "", "checkout", "--place")
	require.Error(t, err)

	out, err := run(t, cfg, "", "checkout", "--place", "--name", "Ada", "--discount-type", "fixed", "--discount-value", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "139.00 EUR")
	assert.Contains(t, out, "placed")

	out, err = run(t, cfg, "", "orders", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada")
}

func TestUnknownLogFormat(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, cfg, "", "--log-format", "xml", "catalog", "list")
	require.Error(t, err)
}

func TestBuildRemoveMultiRequiresIndex(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, cfg, "", "build", "add", "storage", "ssd-990-pro-4tb")
	require.NoError(t, err)
	_, err = run(t, cfg, "", "build", "add", "storage", "ssd-sn850x-2tb")
	require.NoError(t, err)

	_, err = run(t, cfg, "", "build", "remove", "storage")
	require.Error(t, err)
	out, err := run(t, cfg, "", "build", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Samsung 990 Pro 4TB")
	assert.Contains(t, out, "WD Black SN850X 2TB")

	_, err = run(t, cfg, "", "build", "remove", "storage", "2")
	require.NoError(t, err)
	out, err = run(t, cfg, "", "build", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Samsung 990 Pro 4TB")
	assert.NotContains(t, out, "WD Black SN850X 2TB")
}

func TestBuildRemoveSingleWithoutIndex(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, cfg, "", "build", "add", "case", "case-north")
	require.NoError(t, err)
	_, err = run(t, cfg, "", "build", "remove", "case")
	require.NoError(t, err)
	out, err := run(t, cfg, "", "build", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "Fractal Design North")
}

func TestStocktakeImportThenRun(t *testing.T) {
	cfg := writeConfig(t)
	dir := t.TempDir()

	stockFile := filepath.Join(dir, "stock.yaml")
	require.NoError(t, os.WriteFile(stockFile, []byte(`
- sku: cpu-ryzen-9-9950x3d
  name: AMD Ryzen 9 9950X3D
  quantity: 6
- sku: ssd-990-pro-4tb
  name: Samsung 990 Pro 4TB
  quantity: 12
`), 0o644))
	countsFile := filepath.Join(dir, "counts.yaml")
	require.NoError(t, os.WriteFile(countsFile, []byte("cpu-ryzen-9-9950x3d: 4\nssd-990-pro-4tb: 12\n"), 0o644))

	out, err := run(t, cfg, "", "stocktake", "import", stockFile)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 stock records")

	out, err = run(t, cfg, "", "stocktake", "run", "--actor", "frank", countsFile)
	require.NoError(t, err)
	assert.Contains(t, out, "CPU-RYZEN-9-9950X3D")
	assert.Contains(t, out, "-2")
	assert.NotContains(t, out, "unknown SKUs")

	out, err = run(t, cfg, "", "stocktake", "run", "--actor", "frank", countsFile)
	require.NoError(t, err)
	assert.Contains(t, out, "no adjustments (2 matched)")

	out, err = run(t, cfg, "", "stocktake", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "frank")
}

type unreachablePublisher struct{}

func (unreachablePublisher) Publish(context.Context, orders.Order) error {
	return errors.New("nats: no servers available for connection")
}

func TestPlaceOrderReportsArchivedOrderWhenAnnounceFails(t *testing.T) {
	archive := &localrepo.LocalOrderArchive{BaseDir: t.TempDir()}
	svc := &orders.Service{Archive: archive, Publisher: unreachablePublisher{}, Currency: "EUR"}
	summary := checkout.Summary{
		Lines:      []checkout.Line{{ID: "case-north", Name: "Fractal Design North", UnitPrice: decimal.NewFromInt(149), Quantity: 1}},
		Method:     checkout.Pickup,
		Subtotal:   decimal.NewFromInt(149),
		Discounted: decimal.NewFromInt(149),
		GrandTotal: decimal.NewFromInt(149),
	}

	var out bytes.Buffer
	err := placeOrder(context.Background(), svc, summary, orders.Customer{Name: "Gus"}, &out, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	placed, err := archive.List()
	require.NoError(t, err)
	require.Len(t, placed, 1)
	assert.Contains(t, out.String(), placed[0].ID)
	assert.Contains(t, out.String(), "announcement failed")
}

func TestInstallPropagatorInjectsTraceContext(t *testing.T) {
	previous := otel.GetTextMapPropagator()
	t.Cleanup(func() { otel.SetTextMapPropagator(previous) })

	installPropagator()
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "baggage")
}
