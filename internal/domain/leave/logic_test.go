package leave

import (
	"errors"
	"testing"
	"time"

	"shopledger/internal/platform/calendar"
)

func TestCountDays(t *testing.T) {
	start := calendar.Day(2025, time.January, 10)

	days, err := CountDays(start, start)
	if err != nil || days != 1 {
		t.Fatalf("expected 1 day, got %d (%v)", days, err)
	}
	days, err = CountDays(start, calendar.Day(2025, time.January, 12))
	if err != nil || days != 3 {
		t.Fatalf("expected 3 days, got %d (%v)", days, err)
	}
	days, err = CountDays(calendar.Day(2025, time.February, 27), calendar.Day(2025, time.March, 2))
	if err != nil || days != 4 {
		t.Fatalf("expected 4 days across month end, got %d (%v)", days, err)
	}
}

func TestCountDaysInvalid(t *testing.T) {
	_, err := CountDays(calendar.Day(2025, time.February, 10), calendar.Day(2025, time.February, 9))
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestCoversRequestOnlyApproved(t *testing.T) {
	day := calendar.Day(2025, time.January, 15)
	requests := []Request{
		{Status: StatusPending, StartDate: calendar.Day(2025, time.January, 14), EndDate: calendar.Day(2025, time.January, 16)},
		{Status: StatusRejected, StartDate: day, EndDate: day},
	}
	if CoversRequest(requests, day) {
		t.Fatalf("pending and rejected leave must not cover a day")
	}
	requests = append(requests, Request{Status: StatusApproved, StartDate: day, EndDate: calendar.Day(2025, time.January, 20)})
	if !CoversRequest(requests, day) || !CoversRequest(requests, calendar.Day(2025, time.January, 20)) {
		t.Fatalf("approved leave must cover its inclusive range")
	}
	if CoversRequest(requests, calendar.Day(2025, time.January, 21)) {
		t.Fatalf("day after the range must not be covered")
	}
}

func TestCoversHoliday(t *testing.T) {
	holidays := []Holiday{{StartDate: calendar.Day(2025, time.March, 30), EndDate: calendar.Day(2025, time.April, 2)}}
	if !CoversHoliday(holidays, calendar.Day(2025, time.April, 1)) {
		t.Fatalf("expected holiday to cover April 1")
	}
	if CoversHoliday(holidays, calendar.Day(2025, time.April, 3)) {
		t.Fatalf("expected April 3 to be a normal day")
	}
}
