package build_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/hwdepot/rigbuilder/category"
	"github.com/hwdepot/rigbuilder/internal/build"
	"github.com/hwdepot/rigbuilder/internal/catalog"
	"github.com/hwdepot/rigbuilder/internal/diagnostics"
	"github.com/hwdepot/rigbuilder/internal/storage/memory"
)

const featureKey = "rigbuilder.build"

type builderTestContext struct {
	catalog *catalog.Catalog
	store   *memory.Store
	builder *build.Builder
	err     error
}

func (c *builderTestContext) reset() {
	c.catalog = catalog.NewEmbedded()
	c.store = memory.New()
	c.builder = build.NewBuilder(c.store, featureKey, nil)
	c.err = nil
}

func (c *builderTestContext) anEmptyBuild() error {
	if !c.builder.Load(context.Background()).IsEmpty() {
		return errors.New("expected an empty build")
	}
	return nil
}

func (c *builderTestContext) theSavedBuildContains(raw string) error {
	return c.store.Set(context.Background(), featureKey, []byte(raw))
}

func (c *builderTestContext) iSelectAs(id, name string) error {
	cat, err := category.Parse(name)
	if err != nil {
		return err
	}
	o, err := c.catalog.Find(cat, id)
	if err != nil {
		return err
	}
	c.err = c.builder.Select(context.Background(), cat, o)
	return c.err
}

func (c *builderTestContext) iChangeTheQuantityBy(name string, delta int) error {
	cat, err := category.Parse(name)
	if err != nil {
		return err
	}
	c.err = c.builder.SetQuantity(context.Background(), cat, delta)
	return nil
}

func (c *builderTestContext) iRemoveItem(name string, index int) error {
	cat, err := category.Parse(name)
	if err != nil {
		return err
	}
	c.err = c.builder.Remove(context.Background(), cat, index)
	return nil
}

func (c *builderTestContext) iReloadTheBuild() error {
	c.builder = build.NewBuilder(c.store, featureKey, nil)
	c.builder.Load(context.Background())
	return nil
}

func (c *builderTestContext) iResetTheBuild() error {
	return c.builder.ResetAll(context.Background())
}

func (c *builderTestContext) theProcessingOutputIs(want int) error {
	got := diagnostics.Compute(c.builder.State()).ProcessingOutput
	if got != want {
		return fmt.Errorf("expected processing output %d, got %d", want, got)
	}
	return nil
}

func (c *builderTestContext) theDataRegistryIs(want int) error {
	got := diagnostics.Compute(c.builder.State()).DataRegistry
	if got != want {
		return fmt.Errorf("expected data registry %d, got %d", want, got)
	}
	return nil
}

func (c *builderTestContext) theMemoryQuantityIs(want int) error {
	got := c.builder.State().Selection(category.Memory).Quantity()
	if got != want {
		return fmt.Errorf("expected memory quantity %d, got %d", want, got)
	}
	return nil
}

func (c *builderTestContext) theTotalPriceIs(want string) error {
	expected, err := decimal.NewFromString(want)
	if err != nil {
		return err
	}
	got := diagnostics.Compute(c.builder.State()).TotalPrice
	if !got.Equal(expected) {
		return fmt.Errorf("expected total %s, got %s", expected, got)
	}
	return nil
}

func (c *builderTestContext) storageHoldsItems(want int) error {
	got := c.builder.State().Selection(category.Storage).Len()
	if got != want {
		return fmt.Errorf("expected %d storage items, got %d", want, got)
	}
	return nil
}

func (c *builderTestContext) theOperationFailsWithStatus(status string) error {
	if c.err == nil {
		return errors.New("expected the operation to fail but it succeeded")
	}
	code, ok := build.CodeOf(c.err)
	if !ok {
		return fmt.Errorf("expected a build error, got %T", c.err)
	}
	if code.String() != status {
		return fmt.Errorf("expected status %s, got %s", status, code)
	}
	return nil
}

func (c *builderTestContext) theBuildIsEmpty() error {
	if !c.builder.State().IsEmpty() {
		return errors.New("expected an empty build")
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &builderTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an empty build$`, tc.anEmptyBuild)
	ctx.Step(`^the saved build contains "([^"]*)"$`, tc.theSavedBuildContains)

	// When steps
	ctx.Step(`^I select "([^"]*)" as (\w+)$`, tc.iSelectAs)
	ctx.Step(`^I change the (\w+) quantity by (-?\d+)$`, tc.iChangeTheQuantityBy)
	ctx.Step(`^I remove (\w+) item (\d+)$`, tc.iRemoveItem)
	ctx.Step(`^I reload the build$`, tc.iReloadTheBuild)
	ctx.Step(`^I reset the build$`, tc.iResetTheBuild)

	// Then steps
	ctx.Step(`^the processing output is (\d+)$`, tc.theProcessingOutputIs)
	ctx.Step(`^the data registry is (\d+)$`, tc.theDataRegistryIs)
	ctx.Step(`^the memory quantity is (\d+)$`, tc.theMemoryQuantityIs)
	ctx.Step(`^the total price is "([^"]*)"$`, tc.theTotalPriceIs)
	ctx.Step(`^storage holds (\d+) items$`, tc.storageHoldsItems)
	ctx.Step(`^the operation fails with status "([^"]*)"$`, tc.theOperationFailsWithStatus)
	ctx.Step(`^the build is empty$`, tc.theBuildIsEmpty)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/builder.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
