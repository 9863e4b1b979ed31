package salary

import "errors"

var (
	ErrInvalidAmount   = errors.New("salary amount must be positive")
	ErrUnchangedSalary = errors.New("salary amount equals the salary already in force")
	ErrBeforeInitial   = errors.New("salary change starts before the initial salary")
	ErrMonthLocked     = errors.New("salary change starts in a month whose salary is already released")
)
