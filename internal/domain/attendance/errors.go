package attendance

import (
	"errors"

	"shopledger/internal/platform/calendar"
)

var (
	ErrRecordNotFound   = errors.New("attendance record not found")
	ErrInvalidMinutes   = errors.New("late and extra minutes must not be negative")
	ErrMonthLocked      = errors.New("payroll already released for this month")
	ErrInvalidDateRange = calendar.ErrInvalidRange
)
