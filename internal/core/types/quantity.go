// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Quantity represents a delivered, dealt or ordered amount with full precision.
// Uses decimal.Decimal to avoid floating-point errors when summing fulfillments.
type Quantity = decimal.Decimal

// NewQuantity creates a Quantity from an integer amount.
func NewQuantity(v int64) Quantity {
	return decimal.NewFromInt(v)
}

// NewQuantityFromString creates a Quantity from a string.
func NewQuantityFromString(s string) (Quantity, error) {
	return decimal.NewFromString(s)
}

// MustQuantity creates a Quantity from a string, panics on error.
// Use only for constants and tests.
func MustQuantity(s string) Quantity {
	return decimal.RequireFromString(s)
}

// Zero returns zero Quantity value.
func Zero() Quantity {
	return decimal.Zero
}

// Sum adds up quantities. An empty list sums to zero.
func Sum(qs ...Quantity) Quantity {
	total := decimal.Zero
	for _, q := range qs {
		total = total.Add(q)
	}
	return total
}
