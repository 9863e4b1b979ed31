package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"shopledger/internal/domain/pricing"
	"shopledger/internal/domain/stock"
	"shopledger/internal/platform/money"
)

type UnitLocker interface {
	LockTx(ctx context.Context, tx pgx.Tx, shopIDs []string, productID, variantID string) (stock.Unit, error)
}

// Validator prices and stock-checks line items inside the transaction that will later debit
// them. It stops at the first violating line; an order is all or nothing.
type Validator struct {
	units UnitLocker
}

func NewValidator(units UnitLocker) *Validator {
	return &Validator{units: units}
}

func (v *Validator) Validate(ctx context.Context, tx pgx.Tx, items []LineRequest, shopIDs []string) (Validated, error) {
	if len(items) == 0 {
		return Validated{}, ErrEmptyOrder
	}

	out := Validated{Lines: make([]PricedLine, 0, len(items)), Subtotal: money.Zero}
	requested := make(map[string]int, len(items))
	for i, item := range items {
		reject := func(code string, err error) (Validated, error) {
			return Validated{}, &ValidationError{Code: code, LineIndex: i, ProductID: item.ProductID, Err: err}
		}

		if item.Quantity <= 0 {
			return reject(CodeInvalidQuantity, ErrInvalidQuantity)
		}
		discountType, err := pricing.ParseDiscountType(item.DiscountType)
		if err != nil {
			return reject(CodeInvalidDiscount, err)
		}

		unit, err := v.units.LockTx(ctx, tx, shopIDs, item.ProductID, item.VariantID)
		switch {
		case errors.Is(err, stock.ErrProductNotFound):
			return reject(CodeProductNotFound, stock.ErrProductNotFound)
		case errors.Is(err, stock.ErrVariantNotFound):
			return reject(CodeVariantNotFound, stock.ErrVariantNotFound)
		case err != nil:
			return Validated{}, err
		}
		if !unit.Active() {
			return reject(CodeProductNotFound, stock.ErrProductNotFound)
		}

		// Several lines may draw on the same unit; the check is against their sum.
		key := unit.ProductID + "/" + unit.VariantID
		requested[key] += item.Quantity
		if requested[key] > unit.Quantity {
			return reject(CodeInsufficientStock, stock.ErrInsufficientStock)
		}

		quote, err := pricing.Price(item.UnitPrice, discountType, item.DiscountAmount, unit.VATPercent)
		switch {
		case errors.Is(err, pricing.ErrNegativePrice):
			return reject(CodeNegativePrice, err)
		case err != nil:
			return reject(CodeInvalidDiscount, err)
		}

		subtotal := quote.UnitPrice.Mul(decimalInt(item.Quantity))
		out.Lines = append(out.Lines, PricedLine{
			Unit: unit,
			Line: Line{
				LineNo:            i + 1,
				ProductID:         unit.ProductID,
				VariantID:         unit.VariantID,
				Quantity:          item.Quantity,
				UnitPrice:         quote.UnitPrice,
				OriginalUnitPrice: quote.BasePrice,
				DiscountType:      discountType,
				DiscountAmount:    item.DiscountAmount,
				DiscountPerUnit:   quote.DiscountPerUnit,
				VATPercent:        unit.VATPercent,
				Subtotal:          subtotal,
				PurchasePrice:     unit.PurchasePrice,
			},
		})
		out.Subtotal = out.Subtotal.Add(subtotal)
	}
	return out, nil
}
