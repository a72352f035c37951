package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/xenking/coffee-orders/internal/domain/discount"
	"github.com/xenking/coffee-orders/internal/domain/money"
)

// Quote is the result of pricing a set of lines.
type Quote struct {
	Subtotal  money.Cents
	Discounts []discount.Discount
	Total     money.Cents
}

// Price computes subtotal, applicable discounts and total for lines under
// policy. Only the most valuable discount is deducted and the total never
// goes below zero.
func Price(lines []LineItem, policy discount.Policy) Quote {
	subtotal := Subtotal(lines)
	if !policy.Enabled {
		return Quote{Subtotal: subtotal, Discounts: []discount.Discount{}, Total: subtotal}
	}

	discounts := discount.Evaluate(policy, discountLines(lines), subtotal)
	total := subtotal.Sub(discount.Best(discounts, subtotal))
	if total < 0 {
		total = 0
	}
	return Quote{Subtotal: subtotal, Discounts: discounts, Total: total}
}

// Pricer turns order requests into priced orders. It holds no mutable
// state and is safe for concurrent use.
type Pricer struct {
	numbers *NumberGenerator
	now     func() time.Time
}

// NewPricer creates a Pricer that numbers new orders with numbers.
func NewPricer(numbers *NumberGenerator) *Pricer {
	return &Pricer{numbers: numbers, now: time.Now}
}

// PriceNew builds a fresh pending order for req. Validation is the
// caller's responsibility.
func (p *Pricer) PriceNew(req Request, policy discount.Policy) *Order {
	now := p.now().UTC()
	currency := req.Currency
	if currency == "" {
		currency = money.DefaultCurrency
	}

	o := &Order{
		ID:        uuid.New().String(),
		Number:    p.numbers.Next(),
		Status:    StatusPending,
		Currency:  currency,
		CreatedAt: now,
	}
	p.apply(o, req.Orderer, req.Lines, policy, now)
	return o
}

// Reprice returns a copy of existing with the orderer and lines replaced
// and pricing recomputed. Identity, status, currency and creation time
// are preserved; existing itself is left untouched.
func (p *Pricer) Reprice(existing *Order, change ChangeRequest, policy discount.Policy) *Order {
	o := existing.clone()
	p.apply(o, change.Orderer, change.Lines, policy, p.now().UTC())
	return o
}

func (p *Pricer) apply(o *Order, orderer string, lines []LineItem, policy discount.Policy, now time.Time) {
	q := Price(lines, policy)

	o.Orderer = orderer
	o.Lines = cloneLines(lines)
	o.Subtotal = q.Subtotal
	o.Discounts = q.Discounts
	o.Total = q.Total
	o.UpdatedAt = now
}
