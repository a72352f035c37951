package order

import (
	"context"
	"time"

	"github.com/xenking/coffee-orders/internal/domain/discount"
	"github.com/xenking/coffee-orders/internal/domain/money"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCancelled Status = "CANCELLED"
)

// Order is a priced customer order.
type Order struct {
	ID         string
	Number     string
	Orderer    string
	Status     Status
	Lines      []LineItem
	Discounts  []discount.Discount
	Subtotal   money.Cents
	Total      money.Cents
	Currency   money.Currency
	CreatedAt  time.Time
	UpdatedAt  time.Time
	CanceledAt *time.Time
}

// LineItem is a single line of an order. A primary line is a drink and is
// eligible for the free drink promotion; addons are informational.
type LineItem struct {
	Name    string
	Price   money.Cents
	Primary bool
	Addons  []Addon
}

// Addon is a topping attached to a line item.
type Addon struct {
	Name  string
	Price money.Cents
}

// Request holds the input for placing a new order.
type Request struct {
	Orderer  string
	Currency money.Currency
	Lines    []LineItem
}

// ChangeRequest holds the fields an admin may change on a pending order.
type ChangeRequest struct {
	Orderer string
	Lines   []LineItem
}

// Repository defines persistence operations for orders. Implementations
// enforce order number uniqueness and return ErrDuplicateNumber on conflict.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	// Update writes o over the stored order only while the stored order is
	// pending, returning ErrNotPending otherwise.
	Update(ctx context.Context, o *Order) error
	GetByNumber(ctx context.Context, number string) (*Order, error)
	// ListByStatus returns orders with the given status, newest first.
	ListByStatus(ctx context.Context, status Status) ([]Order, error)
	// MostPopular reports the most ordered drink and topping of orders that
	// were not cancelled. Items nobody ordered have a zero Count.
	MostPopular(ctx context.Context) (Popularity, error)
}

// PopularItem is a product name and how many times it was ordered.
type PopularItem struct {
	Name  string
	Count int64
}

// Popularity holds the most ordered drink and topping.
type Popularity struct {
	Drink   PopularItem
	Topping PopularItem
}

// clone returns a deep copy of o so callers can change it freely.
func (o *Order) clone() *Order {
	c := *o
	c.Lines = cloneLines(o.Lines)
	c.Discounts = append([]discount.Discount(nil), o.Discounts...)
	if o.CanceledAt != nil {
		t := *o.CanceledAt
		c.CanceledAt = &t
	}
	return &c
}

func cloneLines(lines []LineItem) []LineItem {
	if lines == nil {
		return nil
	}
	out := make([]LineItem, len(lines))
	for i, l := range lines {
		out[i] = l
		out[i].Addons = append([]Addon(nil), l.Addons...)
	}
	return out
}
