// Package core holds the budget domain model.
//
// Money is always persisted as integer cents. Conversion from the decimal
// amounts callers send happens exactly once, at the RPC boundary, with
// half-up rounding. Repeated edit cycles can drift at the sub-cent level,
// which is acceptable at currency granularity.
package core

import "math"

// DecimalToCents converts a decimal primary-unit amount to cents with
// half-up rounding. Only strictly positive amounts are valid.
//
// Examples:
//
//	DecimalToCents(12.34)  -> 1234, nil
//	DecimalToCents(45.505) -> 4551, nil
//	DecimalToCents(0)      -> 0, ErrInvalidAmount
func DecimalToCents(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrInvalidAmount
	}
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	const maxSafe = float64(1<<62) / 100
	if amount > maxSafe {
		return 0, ErrInvalidAmount
	}
	cents := int64(math.Floor(amount*100 + 0.5))
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// Decimal returns the primary-unit value for display and API responses.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Decimal() float64 {
	return float64(m.Cents) / 100.0
}
