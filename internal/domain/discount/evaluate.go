package discount

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/coffee-orders/internal/domain/money"
)

// Promotion parameters.
const (
	// ThresholdCents is the subtotal that must be exceeded for the
	// percentage rule to apply.
	ThresholdCents money.Cents = 1200
	// FreeItemMinPrimary is the number of drinks needed for the free item rule.
	FreeItemMinPrimary = 3

	ThresholdName = "25% off for orders over 12.00"
	FreeItemName  = "Free drink for 3+ drinks in cart"
)

// ThresholdPercentage is the percentage taken off carts over ThresholdCents.
var ThresholdPercentage = decimal.NewFromInt(25)

// Evaluate runs every rule enabled by policy and returns the discount that
// applies to the cart, if any. When both rules qualify only the one worth
// more to the customer is kept; on an exact tie the percentage discount
// wins. Policy.Enabled is not consulted here; callers skip evaluation
// entirely when the master switch is off.
func Evaluate(policy Policy, lines []Line, subtotal money.Cents) []Discount {
	pct, pctOK := thresholdRule(policy, subtotal)
	free, freeOK := freeItemRule(policy, lines)

	switch {
	case pctOK && freeOK:
		return []Discount{resolve(pct, free, subtotal)}
	case pctOK:
		return []Discount{pct}
	case freeOK:
		return []Discount{free}
	default:
		return []Discount{}
	}
}

func thresholdRule(policy Policy, subtotal money.Cents) (Discount, bool) {
	if !policy.PercentageOverThreshold || subtotal <= ThresholdCents {
		return Discount{}, false
	}
	return NewPercentage(ThresholdName, ThresholdPercentage), true
}

func freeItemRule(policy Policy, lines []Line) (Discount, bool) {
	if !policy.FreeCheapestAfterN {
		return Discount{}, false
	}

	var (
		count    int
		cheapest money.Cents
	)
	for _, l := range lines {
		if !l.Primary {
			continue
		}
		// Strict comparison keeps the first occurrence on ties.
		if count == 0 || l.Price < cheapest {
			cheapest = l.Price
		}
		count++
	}
	if count < FreeItemMinPrimary {
		return Discount{}, false
	}
	if cheapest < 0 {
		cheapest = 0
	}
	return NewFixed(FreeItemName, cheapest), true
}

// resolve keeps the percentage discount unless the fixed one is strictly
// worth more for this subtotal.
func resolve(pct, fixed Discount, subtotal money.Cents) Discount {
	if fixed.Value(subtotal) > pct.Value(subtotal) {
		return fixed
	}
	return pct
}
