// Package discount evaluates the shop's promotional rules against a cart.
package discount

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/coffee-orders/internal/domain/money"
)

// Kind enumerates how a discount's value is expressed.
type Kind string

const (
	// KindPercentage takes a percentage of the subtotal.
	KindPercentage Kind = "percentage"
	// KindFixed takes a fixed amount off the subtotal.
	KindFixed Kind = "fixed"
)

var hundred = decimal.NewFromInt(100)

// Discount is a promotion applied to an order. Exactly one of Percentage
// or Amount is meaningful, selected by Kind.
type Discount struct {
	Name       string
	Kind       Kind
	Percentage decimal.Decimal
	Amount     money.Cents
}

// NewPercentage returns a discount of pct percent of the subtotal.
func NewPercentage(name string, pct decimal.Decimal) Discount {
	return Discount{Name: name, Kind: KindPercentage, Percentage: pct}
}

// NewFixed returns a discount of a fixed amount.
func NewFixed(name string, amount money.Cents) Discount {
	return Discount{Name: name, Kind: KindFixed, Amount: amount}
}

// Value returns the monetary value of the discount for the given subtotal.
// Percentages are floored to whole cents. The result is never negative.
func (d Discount) Value(subtotal money.Cents) money.Cents {
	var v money.Cents
	switch d.Kind {
	case KindPercentage:
		v = money.Cents(decimal.NewFromInt(int64(subtotal)).
			Mul(d.Percentage).
			Div(hundred).
			Floor().
			IntPart())
	case KindFixed:
		v = d.Amount
	}
	if v < 0 {
		return 0
	}
	return v
}

// Best returns the largest value among discounts, or zero when there are none.
func Best(discounts []Discount, subtotal money.Cents) money.Cents {
	var best money.Cents
	for _, d := range discounts {
		if v := d.Value(subtotal); v > best {
			best = v
		}
	}
	return best
}

// Line is the evaluator's view of an order line.
type Line struct {
	Price   money.Cents
	Primary bool
}
