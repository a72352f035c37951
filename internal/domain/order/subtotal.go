package order

import (
	"github.com/xenking/coffee-orders/internal/domain/discount"
	"github.com/xenking/coffee-orders/internal/domain/money"
)

// Subtotal returns the sum of line prices. Negative prices count as zero.
func Subtotal(lines []LineItem) money.Cents {
	var sum money.Cents
	for _, l := range lines {
		if l.Price > 0 {
			sum = sum.Add(l.Price)
		}
	}
	return sum
}

func discountLines(lines []LineItem) []discount.Line {
	out := make([]discount.Line, len(lines))
	for i, l := range lines {
		out[i] = discount.Line{Price: l.Price, Primary: l.Primary}
	}
	return out
}
