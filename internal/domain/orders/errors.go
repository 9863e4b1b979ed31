package orders

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidShop         = errors.New("shop is not accessible")
	ErrEmptyOrder          = errors.New("order has no items")
	ErrCustomerRequired    = errors.New("customer name is required")
	ErrInvalidAmount       = errors.New("amounts must not be negative")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrInvalidTransition   = errors.New("order status transition not allowed")
	ErrInvalidPaymentInput = errors.New("invalid payment method")
)

// Validation codes name the first rejected line item for the caller.
const (
	CodeProductNotFound   = "PRODUCT_NOT_FOUND"
	CodeVariantNotFound   = "VARIANT_NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeNegativePrice     = "NEGATIVE_PRICE"
	CodeInvalidDiscount   = "INVALID_DISCOUNT"
	CodeInvalidQuantity   = "INVALID_QUANTITY"
)

// ValidationError rejects a whole order because of one line item.
type ValidationError struct {
	Code      string
	LineIndex int
	ProductID string
	Err       error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("item %d (product %s): %v", e.LineIndex+1, e.ProductID, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
