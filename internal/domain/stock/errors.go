package stock

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrVariantNotFound   = errors.New("variant not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNegativeStock     = errors.New("adjustment would make stock negative")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
)
