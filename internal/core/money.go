// Package core holds the canonical entities cached by the store and the money
// representation shared by every component.
//
// Amounts are kept as integer cents; the gateway converts the server's decimal
// dollar values on the way in, and Dollars() converts back for display and for
// the handful of derived-metric computations that are inherently fractional
// (weekly budget divided across days, percentages).
package core

import "math"

// FromDollars converts a dollar amount to cents with half-away-from-zero
// rounding.
func FromDollars(v float64) Money {
	return Money{Cents: int64(math.Round(v * 100))}
}

// Dollars returns the dollar value as a float64 for display and gauge math.
// Use cents for exact ledger arithmetic.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (m Money) Neg() Money {
	return Money{Cents: -m.Cents}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Validate rejects non-positive amounts. Sign is carried by the transaction
// kind, never by the amount itself.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
