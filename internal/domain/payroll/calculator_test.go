package payroll

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"shopledger/internal/domain/attendance"
	"shopledger/internal/domain/leave"
	"shopledger/internal/domain/salary"
	"shopledger/internal/platform/calendar"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func jan(day int) time.Time { return calendar.Day(2025, time.January, day) }

func mustMonth(t *testing.T, month string) Period {
	t.Helper()
	p, err := MonthPeriod(month)
	if err != nil {
		t.Fatalf("month %s: %v", month, err)
	}
	return p
}

func present(days ...time.Time) []attendance.Record {
	out := make([]attendance.Record, 0, len(days))
	for _, d := range days {
		out = append(out, attendance.Record{WorkDate: d})
	}
	return out
}

func TestCalculateTwoUnrecordedDays(t *testing.T) {
	calc := NewCalculator(DefaultPolicy())
	period := mustMonth(t, "2025-01")

	var worked []time.Time
	for d := period.Start; !d.After(period.End); d = d.AddDate(0, 0, 1) {
		if !calc.IsWeekend(d) {
			worked = append(worked, d)
		}
	}
	if len(worked) != 26 {
		t.Fatalf("expected 26 working days in January 2025, got %d", len(worked))
	}

	got := calc.Calculate(Inputs{
		EmployeeID: "emp-1",
		Period:     period,
		Attendance: present(worked[:24]...),
		Salaries:   []salary.Entry{{Amount: dec("30000"), StartDate: calendar.Day(2024, time.January, 1)}},
	})

	if got.ExpectedWorkingDays != 26 || got.PresentDays != 24 || got.AbsentDays != 2 || got.UnrecordedDays != 2 {
		t.Fatalf("unexpected day counts %+v", got)
	}
	if !got.NetPay.Equal(dec("27692.31")) {
		t.Fatalf("expected net 27692.31, got %s", got.NetPay)
	}
	if !got.BaseSalary.Equal(dec("30000")) {
		t.Fatalf("expected base salary 30000, got %s", got.BaseSalary)
	}
}

func TestCalculateDayRules(t *testing.T) {
	calc := NewCalculator(DefaultPolicy())
	got := calc.Calculate(Inputs{
		Period: mustMonth(t, "2025-01"),
		Attendance: []attendance.Record{
			{WorkDate: jan(1), IsHalfDay: true, IsFullAbsent: true},
			{WorkDate: jan(2), IsHalfDay: true},
			{WorkDate: jan(3), ExtraMinutes: 60},
			{WorkDate: jan(4), LateMinutes: 60},
			{WorkDate: jan(5), ExtraMinutes: 120},
		},
		Salaries: []salary.Entry{{Amount: dec("26000"), StartDate: calendar.Day(2024, time.January, 1)}},
		Leave:    []leave.Request{{Status: leave.StatusApproved, StartDate: jan(6), EndDate: jan(7)}},
	})

	checks := []struct {
		name string
		got  int
		want int
	}{
		{"expected", got.ExpectedWorkingDays, 26},
		{"present", got.PresentDays, 2},
		{"half", got.HalfDays, 1},
		{"absent", got.AbsentDays, 21},
		{"unrecorded", got.UnrecordedDays, 20},
		{"leave", got.LeaveDays, 2},
		{"weekend", got.WeekendDays, 5},
		{"late minutes", got.TotalLateMinutes, 60},
		{"extra minutes", got.TotalExtraMinutes, 180},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s: expected %d, got %d", c.name, c.want, c.got)
		}
	}

	amounts := map[string][2]decimal.Decimal{
		"scheduled": {got.ScheduledPay, dec("26000")},
		"absence":   {got.AbsenceDeduction, dec("21500")},
		"late":      {got.LateDeduction, dec("125")},
		"deduction": {got.Deductions, dec("21625")},
		"overtime":  {got.OvertimePay, dec("562.5")},
		"net":       {got.NetPay, dec("4937.5")},
	}
	for name, pair := range amounts {
		if !pair[0].Equal(pair[1]) {
			t.Fatalf("%s: expected %s, got %s", name, pair[1], pair[0])
		}
	}

	if got.Days[0].Kind != DayAbsent || got.Days[2].Kind != DayWeekend || got.Days[5].Kind != DayLeave {
		t.Fatalf("unexpected day kinds %s %s %s", got.Days[0].Kind, got.Days[2].Kind, got.Days[5].Kind)
	}
}

func TestCalculateHolidaysShrinkWorkingMonth(t *testing.T) {
	calc := NewCalculator(DefaultPolicy())
	period := mustMonth(t, "2025-01")
	holidays := []leave.Holiday{{StartDate: jan(1), EndDate: jan(2)}}

	records := []attendance.Record{{WorkDate: jan(1), ExtraMinutes: 60}}
	for d := period.Start; !d.After(period.End); d = d.AddDate(0, 0, 1) {
		if !calc.IsWeekend(d) && !leave.CoversHoliday(holidays, d) {
			records = append(records, attendance.Record{WorkDate: d})
		}
	}

	got := calc.Calculate(Inputs{
		Period:         period,
		Attendance:     records,
		FallbackSalary: dec("24000"),
		Holidays:       holidays,
	})
	if got.ExpectedWorkingDays != 24 || got.HolidayDays != 2 || got.AbsentDays != 0 {
		t.Fatalf("unexpected counts %+v", got)
	}
	if !got.NetPay.Equal(dec("24187.5")) {
		t.Fatalf("expected full pay plus holiday overtime 24187.5, got %s", got.NetPay)
	}
}

func TestCalculateSalaryChangeAcrossMonths(t *testing.T) {
	calc := NewCalculator(DefaultPolicy())
	period, err := RangePeriod(jan(30), calendar.Day(2025, time.February, 2))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	got := calc.Calculate(Inputs{
		Period:     period,
		Attendance: present(jan(30), calendar.Day(2025, time.February, 1), calendar.Day(2025, time.February, 2)),
		Salaries: []salary.Entry{
			{Amount: dec("26000"), StartDate: calendar.Day(2024, time.January, 1)},
			{Amount: dec("30000"), StartDate: calendar.Day(2025, time.February, 1)},
		},
	})
	// January: 26000 / 26; February: 30000 / 24.
	if !got.NetPay.Equal(dec("3500")) {
		t.Fatalf("expected 3500, got %s", got.NetPay)
	}
	if !got.BaseSalary.Equal(dec("30000")) || got.WeekendDays != 1 {
		t.Fatalf("unexpected breakdown %+v", got)
	}
}

func TestCalculateNeverNegative(t *testing.T) {
	calc := NewCalculator(DefaultPolicy())
	period, _ := RangePeriod(jan(2), jan(2))
	got := calc.Calculate(Inputs{
		Period:         period,
		Attendance:     []attendance.Record{{WorkDate: jan(2), LateMinutes: 5000}},
		FallbackSalary: dec("26000"),
	})
	if !got.NetPay.IsZero() {
		t.Fatalf("expected net clamped to zero, got %s", got.NetPay)
	}
	if !got.LateDeduction.Equal(dec("10416.67")) {
		t.Fatalf("expected late deduction 10416.67, got %s", got.LateDeduction)
	}
}

func TestCalculateIsIdempotent(t *testing.T) {
	calc := NewCalculator(DefaultPolicy())
	in := Inputs{
		EmployeeID:     "emp-1",
		Period:         mustMonth(t, "2025-03"),
		Attendance:     []attendance.Record{{WorkDate: calendar.Day(2025, time.March, 3), LateMinutes: 7, ExtraMinutes: 13}},
		FallbackSalary: dec("31234.56"),
	}
	first, err := json.Marshal(calc.Calculate(in))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, _ := json.Marshal(calc.Calculate(in))
	if !bytes.Equal(first, second) {
		t.Fatalf("expected identical breakdowns")
	}
}

func TestPeriods(t *testing.T) {
	p := mustMonth(t, "2024-02")
	if !p.Start.Equal(calendar.Day(2024, time.February, 1)) || !p.End.Equal(calendar.Day(2024, time.February, 29)) || p.Month != "2024-02" {
		t.Fatalf("unexpected period %+v", p)
	}
	if _, err := MonthPeriod("2024-13"); err != ErrInvalidMonth {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
	if _, err := RangePeriod(jan(5), jan(4)); err != ErrInvalidDateRange {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
	if _, err := RangePeriod(jan(1), calendar.Day(2026, time.January, 1)); err != nil {
		t.Fatalf("expected a 366-day range to pass, got %v", err)
	}
	if _, err := RangePeriod(jan(1), calendar.Day(2026, time.January, 2)); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected a 367-day range to fail with ErrInvalidDateRange, got %v", err)
	}
	if _, err := RangePeriod(calendar.Day(1900, time.January, 1), calendar.Day(9999, time.December, 31)); !errors.Is(err, ErrRangeTooLong) {
		t.Fatalf("expected ErrRangeTooLong, got %v", err)
	}
	first, last := Period{Start: jan(20), End: calendar.Day(2025, time.February, 3)}.Span()
	if !first.Equal(jan(1)) || !last.Equal(calendar.Day(2025, time.February, 28)) {
		t.Fatalf("unexpected span %v - %v", first, last)
	}
}
