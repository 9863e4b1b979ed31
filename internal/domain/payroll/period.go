package payroll

import (
	"time"

	"shopledger/internal/platform/calendar"
)

// Period is an inclusive range of days. Month is set only for calendar-month periods.
type Period struct {
	Start time.Time
	End   time.Time
	Month string
}

func MonthPeriod(month string) (Period, error) {
	first, last, err := calendar.ParseMonth(month)
	if err != nil {
		return Period{}, ErrInvalidMonth
	}
	return Period{Start: first, End: last, Month: calendar.MonthKey(first)}, nil
}

// MaxRangeDays bounds ad-hoc ranges, which are computed day by day.
const MaxRangeDays = 366

func RangePeriod(start, end time.Time) (Period, error) {
	start, end = calendar.Truncate(start), calendar.Truncate(end)
	if start.After(end) {
		return Period{}, ErrInvalidDateRange
	}
	if start.AddDate(0, 0, MaxRangeDays-1).Before(end) {
		return Period{}, ErrRangeTooLong
	}
	return Period{Start: start, End: end}, nil
}

// Span widens the period to whole months, which is what per-month rates are computed over.
func (p Period) Span() (time.Time, time.Time) {
	first, _ := calendar.MonthBounds(p.Start)
	_, last := calendar.MonthBounds(p.End)
	return first, last
}
