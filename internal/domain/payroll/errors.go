package payroll

import (
	"errors"
	"fmt"

	"shopledger/internal/platform/calendar"
)

var (
	ErrReleaseNotFound     = errors.New("payroll release not found")
	ErrAlreadyReleased     = errors.New("payroll already released for this month")
	ErrDeductionsExceedPay = errors.New("deductions exceed payable salary")
	ErrInvalidAdjustment   = errors.New("payroll adjustments must not be negative")
	ErrLoanRequired        = errors.New("loan deduction requires a loan id")
	ErrInvalidMonth        = errors.New("salary month must be formatted YYYY-MM")
	ErrInvalidDateRange    = calendar.ErrInvalidRange
	ErrRangeTooLong        = fmt.Errorf("%w: longer than %d days", ErrInvalidDateRange, MaxRangeDays)
)
