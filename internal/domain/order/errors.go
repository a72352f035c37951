package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for order validation and lookup.
var (
	ErrEmptyLines      = errors.New("order lines required")
	ErrOrdererRequired = errors.New("orderer required")
	ErrNotFound        = errors.New("order not found")
	ErrNotPending      = errors.New("order is not pending")
	ErrDuplicateNumber = errors.New("duplicate order number")
)

// MaxOrdererLength is the longest orderer name accepted.
const MaxOrdererLength = 50

// MissingPrimaryItemError indicates an order without any drink.
type MissingPrimaryItemError struct {
	Orderer string
}

func (e *MissingPrimaryItemError) Error() string {
	return fmt.Sprintf("order for %q does not contain a drink", e.Orderer)
}

// OrdererTooLongError indicates an orderer name above MaxOrdererLength.
type OrdererTooLongError struct {
	Length int
}

func (e *OrdererTooLongError) Error() string {
	return fmt.Sprintf("orderer name has %d characters, at most %d allowed", e.Length, MaxOrdererLength)
}

// InvalidPriceError indicates a line item with a negative price.
type InvalidPriceError struct {
	Line int
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("line %d has a negative price", e.Line)
}

// IsClientError reports whether err was caused by invalid input rather than
// a system fault.
func IsClientError(err error) bool {
	var (
		mpErr *MissingPrimaryItemError
		otErr *OrdererTooLongError
		ipErr *InvalidPriceError
	)
	switch {
	case errors.Is(err, ErrEmptyLines),
		errors.Is(err, ErrOrdererRequired),
		errors.Is(err, ErrNotPending),
		errors.As(err, &mpErr),
		errors.As(err, &otErr),
		errors.As(err, &ipErr):
		return true
	}
	return false
}
