// Package calendar works with whole days. Every day value is midnight UTC so that dates read
// from DATE columns compare equal to dates parsed from requests.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

var ErrInvalidRange = errors.New("start date must not be after end date")

func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the clock part, keeping the calendar date as seen in t's location.
func Truncate(t time.Time) time.Time {
	return Day(t.Year(), t.Month(), t.Day())
}

func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return t, nil
}

// ParseMonth returns the first and last day of a "YYYY-MM" month.
func ParseMonth(raw string) (time.Time, time.Time, error) {
	t, err := time.Parse(MonthLayout, raw)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q: %w", raw, err)
	}
	first, last := MonthBounds(t)
	return first, last, nil
}

// MonthBounds returns the first and last day of the month containing t.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	first := Day(t.Year(), t.Month(), 1)
	return first, first.AddDate(0, 1, -1)
}

func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// Days lists every day from start to end inclusive.
func Days(start, end time.Time) ([]time.Time, error) {
	start, end = Truncate(start), Truncate(end)
	if start.After(end) {
		return nil, ErrInvalidRange
	}
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out, nil
}

// Within reports whether day lies in [start, end].
func Within(day, start, end time.Time) bool {
	return !day.Before(start) && !day.After(end)
}
