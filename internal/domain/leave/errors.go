package leave

import (
	"errors"

	"shopledger/internal/platform/calendar"
)

var (
	ErrRequestNotFound     = errors.New("leave request not found")
	ErrHolidayNotFound     = errors.New("holiday not found")
	ErrAlreadyDecided      = errors.New("leave request already decided")
	ErrInvalidDecision     = errors.New("decision must be approved or rejected")
	ErrLeaveTypeRequired   = errors.New("leave type is required")
	ErrDescriptionRequired = errors.New("holiday description is required")
	ErrInvalidShop         = errors.New("shop not accessible")
	ErrMonthLocked         = errors.New("dates fall in a month whose salary is already released")
	ErrInvalidDateRange    = calendar.ErrInvalidRange
)
