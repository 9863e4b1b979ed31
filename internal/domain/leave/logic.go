package leave

import (
	"time"

	"shopledger/internal/platform/calendar"
)

// CountDays returns the inclusive number of calendar days between start and end.
func CountDays(start, end time.Time) (int, error) {
	start, end = calendar.Truncate(start), calendar.Truncate(end)
	if end.Before(start) {
		return 0, ErrInvalidDateRange
	}
	return int(end.Sub(start).Hours()/24) + 1, nil
}

// CoversRequest reports whether an approved request includes day.
func CoversRequest(requests []Request, day time.Time) bool {
	for _, r := range requests {
		if r.Status == StatusApproved && calendar.Within(day, r.StartDate, r.EndDate) {
			return true
		}
	}
	return false
}

// CoversHoliday reports whether any holiday range includes day.
func CoversHoliday(holidays []Holiday, day time.Time) bool {
	for _, h := range holidays {
		if calendar.Within(day, h.StartDate, h.EndDate) {
			return true
		}
	}
	return false
}
