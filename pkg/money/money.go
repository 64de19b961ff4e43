package money

import "github.com/shopspring/decimal"

// All monetary values in the engine are quantized to 2 decimal places with
// half-up rounding at every arithmetic boundary, not only at the end. This
// keeps instalment-by-instalment values reproducible across runs and
// reconcilable against the audit trail.

// Round2 rounds to 2 decimal places, halves away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Zero is the canonical 0.00 amount.
func Zero() decimal.Decimal { return decimal.Zero }

// FromString parses an amount string ("5000.00").
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString parses an amount string and panics on error. For tests and
// package-level constants only.
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
