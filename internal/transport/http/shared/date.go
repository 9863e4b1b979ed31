package shared

import (
	"time"

	"shopledger/internal/platform/calendar"
)

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the calendar day. Empty input is the zero time.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return calendar.Truncate(parsed), nil
	}
	return calendar.ParseDate(value)
}
