// Package pricing computes the unit price actually charged for a line item.
//
// The discount is always applied before VAT. Reversing the order changes the tax base,
// so callers must not pre-apply VAT to the base price.
package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"shopledger/internal/platform/money"
)

type DiscountType string

const (
	DiscountNone       DiscountType = "none"
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

var (
	ErrNegativePrice       = errors.New("discount exceeds base price")
	ErrInvalidDiscountType = errors.New("invalid discount type")
	ErrInvalidInput        = errors.New("price, discount and vat must not be negative")
)

// ParseDiscountType accepts the wire names; the empty string means no discount.
func ParseDiscountType(raw string) (DiscountType, error) {
	switch DiscountType(strings.ToLower(strings.TrimSpace(raw))) {
	case "", DiscountNone:
		return DiscountNone, nil
	case DiscountPercentage:
		return DiscountPercentage, nil
	case DiscountFixed:
		return DiscountFixed, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDiscountType, raw)
	}
}

type Quote struct {
	BasePrice          decimal.Decimal
	PriceAfterDiscount decimal.Decimal
	DiscountPerUnit    decimal.Decimal
	UnitPrice          decimal.Decimal
}

// Price returns the charged unit price: (base - discount) * (1 + vat/100), rounded to cents.
// A fixed discount larger than the base price is rejected, never clamped.
func Price(base decimal.Decimal, discountType DiscountType, discountAmount, vatPercent decimal.Decimal) (Quote, error) {
	if !money.NonNegative(base, discountAmount, vatPercent) {
		return Quote{}, ErrInvalidInput
	}

	afterDiscount := base
	switch discountType {
	case DiscountNone, "":
	case DiscountPercentage:
		afterDiscount = base.Mul(money.Hundred.Sub(discountAmount)).Div(money.Hundred)
	case DiscountFixed:
		afterDiscount = base.Sub(discountAmount)
	default:
		return Quote{}, fmt.Errorf("%w: %q", ErrInvalidDiscountType, discountType)
	}
	if afterDiscount.IsNegative() {
		return Quote{}, ErrNegativePrice
	}

	withVAT := afterDiscount.Add(money.Percent(afterDiscount, vatPercent))
	return Quote{
		BasePrice:          base,
		PriceAfterDiscount: afterDiscount,
		DiscountPerUnit:    base.Sub(afterDiscount),
		UnitPrice:          money.Round(withVAT),
	}, nil
}
