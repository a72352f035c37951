// Package money holds the monetary value types shared by the pricing code.
package money

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrUnknownCurrency is returned by ParseCurrency for unsupported codes.
var ErrUnknownCurrency = errors.New("unknown currency")

// Cents is an amount in minor currency units.
type Cents int64

var hundred = decimal.NewFromInt(100)

// Add returns c + o.
func (c Cents) Add(o Cents) Cents { return c + o }

// Sub returns c - o.
func (c Cents) Sub(o Cents) Cents { return c - o }

// Decimal returns the amount in major units with two decimal places.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(c)).Div(hundred).Round(2)
}

// String formats the amount in major units, e.g. "12.50".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Currency is an ISO 4217 code accepted by the shop.
type Currency string

const (
	EUR Currency = "EUR"
	USD Currency = "USD"
	HUF Currency = "HUF"
)

// DefaultCurrency is used when an order request does not name one.
const DefaultCurrency = EUR

// ParseCurrency parses a currency code case-insensitively.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", errors.Wrapf(ErrUnknownCurrency, "%q", s)
	}
	return c, nil
}

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	switch c {
	case EUR, USD, HUF:
		return true
	}
	return false
}
