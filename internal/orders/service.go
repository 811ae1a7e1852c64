// Package orders turns a checkout summary into a placed order, archives it
// and optionally announces it over NATS.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/hwdepot/rigbuilder/internal/checkout"
)

var ErrEmptyOrder = errors.New("orders: build has no items")

// ErrNotAnnounced means the order was archived but publishing it failed.
// The returned Order is valid and must not be placed again.
var ErrNotAnnounced = errors.New("orders: order archived but not announced")

var tracer = otel.Tracer("github.com/hwdepot/rigbuilder/internal/orders")

type Service struct {
	Logger    *slog.Logger
	Archive   Archive
	Publisher Publisher
	Currency  string
	Now       func() time.Time
}

// Place records summary as a new order. The saved build is left intact so
// the customer can return to it.
func (s *Service) Place(ctx context.Context, summary checkout.Summary, customer Customer) (Order, error) {
	ctx, span := tracer.Start(ctx, "orders.Place")
	defer span.End()

	order, err := s.place(ctx, summary, customer)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if order.ID != "" {
		span.SetAttributes(attribute.String("order.id", order.ID))
	}
	return order, err
}

func (s *Service) place(ctx context.Context, summary checkout.Summary, customer Customer) (Order, error) {
	if s.Archive == nil {
		return Order{}, errors.New("order archive is not configured")
	}
	if summary.IsEmpty() {
		return Order{}, ErrEmptyOrder
	}
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Contact = strings.TrimSpace(customer.Contact)
	if customer.Name == "" {
		return Order{}, errors.New("customer name is required")
	}

	order := Order{
		ID:          uuid.New().String(),
		CreatedAt:   s.now(),
		Customer:    customer,
		Method:      summary.Method,
		Currency:    s.Currency,
		Lines:       append([]checkout.Line(nil), summary.Lines...),
		Subtotal:    summary.Subtotal,
		DeliveryFee: summary.DeliveryFee,
		GrandTotal:  summary.GrandTotal,
	}
	if !summary.Discount.IsZero() {
		order.Discount = summary.Discount.String()
	}

	logger := s.logger().With("order_id", order.ID)
	if err := s.Archive.Save(order); err != nil {
		return Order{}, fmt.Errorf("archive order: %w", err)
	}
	logger.Info("order placed",
		"lines", len(order.Lines),
		"method", order.Method,
		"grand_total", order.GrandTotal.StringFixed(2),
	)

	if s.Publisher == nil {
		logger.Debug("no publisher configured, order archived only")
		return order, nil
	}
	if err := s.Publisher.Publish(ctx, order); err != nil {
		logger.Warn("order archived but not announced", "error", err)
		return order, fmt.Errorf("%w: %w", ErrNotAnnounced, err)
	}
	logger.Debug("order announced")
	return order, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
