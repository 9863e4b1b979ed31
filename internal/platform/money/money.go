// Package money holds the rounding and parsing rules shared by every monetary figure.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places persisted for monetary amounts.
const Scale = 2

var (
	Zero    = decimal.Zero
	Hundred = decimal.NewFromInt(100)
)

// Round rounds half away from zero to Scale places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Percent returns p% of d without rounding.
func Percent(d, p decimal.Decimal) decimal.Decimal {
	return d.Mul(p).Div(Hundred)
}

// Parse accepts a decimal string; the empty string is zero.
func Parse(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return d, nil
}

// Sum adds all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// NonNegative reports whether every value is >= 0.
func NonNegative(values ...decimal.Decimal) bool {
	for _, v := range values {
		if v.IsNegative() {
			return false
		}
	}
	return true
}
