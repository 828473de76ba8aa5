// Package core provides money parsing and handling utilities.
//
// This file contains the Money type used for expense amounts. Amounts are
// kept as arbitrary precision decimals so totals never drift the way float
// sums do, and they are rendered through go-money for display.
package core

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is a decimal amount without currency. The currency is a display
// concern chosen by configuration.
type Money struct {
	value decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// NewMoney wraps a decimal value.
func NewMoney(d decimal.Decimal) Money { return Money{value: d} }

// MoneyFromFloat converts a float amount. Intended for tests and literals.
func MoneyFromFloat(f float64) Money { return Money{value: decimal.NewFromFloat(f)} }

// ParseMoney parses a user supplied amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rejects
// empty input, signs, non-numeric values and anything that is not strictly
// positive.
//
// Examples:
//
//	ParseMoney("12.34") -> 12.34, nil
//	ParseMoney("12,34") -> 12.34, nil
//	ParseMoney("0")     -> ErrInvalidAmount
//	ParseMoney("-1")    -> ErrInvalidAmount
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, ErrInvalidAmount
	}
	m := Money{value: d}
	if err := m.Validate(); err != nil {
		return Zero, err
	}
	return m, nil
}

// Validate reports ErrInvalidAmount unless the amount is strictly positive.
func (m Money) Validate() error {
	if !m.value.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) IsPositive() bool         { return m.value.IsPositive() }
func (m Money) Equal(n Money) bool       { return m.value.Equal(n.value) }
func (m Money) GreaterThan(n Money) bool { return m.value.GreaterThan(n.value) }
func (m Money) Add(n Money) Money        { return Money{value: m.value.Add(n.value)} }

// DivInt divides by a count, returning zero when the count is zero.
func (m Money) DivInt(n int) Money {
	if n == 0 {
		return Zero
	}
	return Money{value: m.value.Div(decimal.NewFromInt(int64(n)))}
}

// String returns the exact decimal representation.
func (m Money) String() string { return m.value.String() }

// StringFixed returns the amount rounded to the given number of places.
func (m Money) StringFixed(places int32) string { return m.value.StringFixed(places) }

// Format renders the amount in the given ISO currency, e.g. "$12.34".
// Unknown currency codes fall back to two fixed decimals.
func (m Money) Format(code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return m.value.StringFixed(2)
	}
	minor := m.value.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}

// MarshalJSON encodes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.value.String()), nil
}

// UnmarshalJSON accepts both numbers and numeric strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.value.UnmarshalJSON(data)
}
