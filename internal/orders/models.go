package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hwdepot/rigbuilder/internal/checkout"
)

// Customer identifies who placed the order.
type Customer struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// Order is a placed checkout. Amounts are frozen at placement time.
type Order struct {
	ID          string                     `json:"id"`
	CreatedAt   time.Time                  `json:"createdAt"`
	Customer    Customer                   `json:"customer"`
	Method      checkout.FulfillmentMethod `json:"method"`
	Currency    string                     `json:"currency"`
	Lines       []checkout.Line            `json:"lines"`
	Subtotal    decimal.Decimal            `json:"subtotal"`
	Discount    string                     `json:"discount,omitempty"`
	DeliveryFee decimal.Decimal            `json:"deliveryFee"`
	GrandTotal  decimal.Decimal            `json:"grandTotal"`
}

// Archive stores placed orders.
type Archive interface {
	Save(order Order) error
	Get(id string) (Order, error)
	List() ([]Order, error)
}
