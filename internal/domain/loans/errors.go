package loans

import "errors"

var (
	ErrLoanNotFound              = errors.New("loan not found")
	ErrLoanCompleted             = errors.New("loan already completed")
	ErrInvalidAmount             = errors.New("amount must be positive")
	ErrInvalidEMI                = errors.New("monthly EMI must not be negative")
	ErrInvalidRate               = errors.New("interest rate must not be negative")
	ErrPaymentExceedsBalance     = errors.New("loan payment exceeds remaining balance")
	ErrAdvanceExceedsOutstanding = errors.New("advance deduction exceeds outstanding advance")
)
