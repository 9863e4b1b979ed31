package calendar

import (
	"errors"
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	first, last, err := ParseMonth("2024-02")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !first.Equal(Day(2024, time.February, 1)) || !last.Equal(Day(2024, time.February, 29)) {
		t.Fatalf("unexpected bounds %s %s", first, last)
	}
	if _, _, err := ParseMonth("2024-13"); err == nil {
		t.Fatal("expected error for month 13")
	}
}

func TestDaysInclusive(t *testing.T) {
	days, err := Days(Day(2025, time.January, 30), Day(2025, time.February, 2))
	if err != nil {
		t.Fatalf("days: %v", err)
	}
	if len(days) != 4 || !days[3].Equal(Day(2025, time.February, 2)) {
		t.Fatalf("unexpected days %v", days)
	}
	if _, err := Days(Day(2025, time.February, 2), Day(2025, time.January, 30)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestTruncateKeepsLocalDate(t *testing.T) {
	loc := time.FixedZone("UTC+6", 6*3600)
	got := Truncate(time.Date(2025, time.March, 1, 2, 30, 0, 0, loc))
	if !got.Equal(Day(2025, time.March, 1)) {
		t.Fatalf("expected 2025-03-01, got %s", got)
	}
}

func TestWithin(t *testing.T) {
	start, end := Day(2025, time.January, 10), Day(2025, time.January, 12)
	if !Within(start, start, end) || !Within(end, start, end) {
		t.Fatal("bounds are inclusive")
	}
	if Within(Day(2025, time.January, 13), start, end) {
		t.Fatal("day after end is outside")
	}
}
