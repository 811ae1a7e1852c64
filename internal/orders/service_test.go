package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwdepot/rigbuilder/category"
	"github.com/hwdepot/rigbuilder/internal/checkout"
	"github.com/hwdepot/rigbuilder/internal/pricing"
)

type memoryArchive struct {
	saved []Order
	err   error
}

func (m *memoryArchive) Save(order Order) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, order)
	return nil
}

func (m *memoryArchive) Get(id string) (Order, error) {
	for _, o := range m.saved {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, errors.New("not found")
}

func (m *memoryArchive) List() ([]Order, error) {
	return m.saved, nil
}

type recordingPublisher struct {
	published []Order
	err       error
}

func (r *recordingPublisher) Publish(_ context.Context, order Order) error {
	if r.err != nil {
		return r.err
	}
	r.published = append(r.published, order)
	return nil
}

func testSummary() checkout.Summary {
	return checkout.Summary{
		Lines: []checkout.Line{
			{ID: "ssd-990-pro-4tb", Name: "Samsung 990 Pro 4TB", UnitPrice: decimal.NewFromInt(899), Quantity: 1, Category: category.Storage},
			{ID: "ssd-sn850x-2tb", Name: "WD Black SN850X 2TB", UnitPrice: decimal.NewFromInt(459), Quantity: 1, Category: category.Storage},
		},
		Method:      checkout.Shipping,
		Subtotal:    decimal.NewFromInt(1358),
		Discounted:  decimal.NewFromInt(1358),
		DeliveryFee: decimal.NewFromInt(49),
		GrandTotal:  decimal.NewFromInt(1407),
	}
}

func TestPlaceArchivesAndPublishes(t *testing.T) {
	t.Parallel()

	archive := &memoryArchive{}
	publisher := &recordingPublisher{}
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	svc := &Service{Archive: archive, Publisher: publisher, Currency: "EUR", Now: func() time.Time { return now }}

	order, err := svc.Place(context.Background(), testSummary(), Customer{Name: " Dana ", Contact: "dana@example.com"})
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, now, order.CreatedAt)
	assert.Equal(t, "Dana", order.Customer.Name)
	assert.Equal(t, "EUR", order.Currency)
	assert.Len(t, order.Lines, 2)
	assert.True(t, order.GrandTotal.Equal(decimal.NewFromInt(1407)))
	assert.Empty(t, order.Discount)

	require.Len(t, archive.saved, 1)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, order.ID, publisher.published[0].ID)
}

func TestPlaceWithoutPublisher(t *testing.T) {
	t.Parallel()

	archive := &memoryArchive{}
	svc := &Service{Archive: archive}

	summary := testSummary()
	summary.Discount = pricing.Discount{Type: pricing.DiscountFixed, Value: decimal.NewFromInt(100)}
	order, err := svc.Place(context.Background(), summary, Customer{Name: "Dana"})
	require.NoError(t, err)
	assert.Equal(t, "-100.00", order.Discount)
	assert.Len(t, archive.saved, 1)
}

func TestPlaceRejectsEmptyBuild(t *testing.T) {
	t.Parallel()

	archive := &memoryArchive{}
	svc := &Service{Archive: archive}

	_, err := svc.Place(context.Background(), checkout.Summary{}, Customer{Name: "Dana"})
	assert.ErrorIs(t, err, ErrEmptyOrder)
	assert.Empty(t, archive.saved)
}

func TestPlaceRequiresCustomerName(t *testing.T) {
	t.Parallel()

	svc := &Service{Archive: &memoryArchive{}}
	_, err := svc.Place(context.Background(), testSummary(), Customer{Contact: "x@example.com"})
	require.Error(t, err)
}

func TestPlaceArchiveFailureSkipsPublish(t *testing.T) {
	t.Parallel()

	publisher := &recordingPublisher{}
	svc := &Service{Archive: &memoryArchive{err: errors.New("read-only fs")}, Publisher: publisher}

	_, err := svc.Place(context.Background(), testSummary(), Customer{Name: "Dana"})
	require.Error(t, err)
	assert.Empty(t, publisher.published)
}

func TestPlacePublishFailureKeepsArchivedOrder(t *testing.T) {
	t.Parallel()

	archive := &memoryArchive{}
	svc := &Service{Archive: archive, Publisher: &recordingPublisher{err: errors.New("no responders")}}

	order, err := svc.Place(context.Background(), testSummary(), Customer{Name: "Dana"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotAnnounced)
	assert.ErrorContains(t, err, "no responders")
	assert.NotEmpty(t, order.ID)
	assert.Len(t, archive.saved, 1)
}
