package payroll

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"shopledger/internal/domain/attendance"
	"shopledger/internal/domain/leave"
	"shopledger/internal/domain/salary"
	"shopledger/internal/platform/calendar"
	"shopledger/internal/platform/money"
)

var (
	sixty = decimal.NewFromInt(60)
	two   = decimal.NewFromInt(2)
)

// Policy holds the working-time rules shared by every employee.
type Policy struct {
	WeekendDays        []time.Weekday
	DailyHours         decimal.Decimal
	OvertimeMultiplier decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		WeekendDays:        []time.Weekday{time.Friday},
		DailyHours:         decimal.NewFromInt(8),
		OvertimeMultiplier: decimal.RequireFromString("1.5"),
	}
}

// Calculator turns ledger contents into a salary breakdown. It has no side effects: equal
// inputs always produce equal output.
type Calculator struct {
	policy Policy
}

func NewCalculator(policy Policy) *Calculator {
	return &Calculator{policy: policy}
}

func (c *Calculator) IsWeekend(day time.Time) bool {
	return slices.Contains(c.policy.WeekendDays, day.Weekday())
}

// WorkingDays counts the days of day's month that are neither weekend nor holiday.
func (c *Calculator) WorkingDays(day time.Time, holidays []leave.Holiday) int {
	first, last := calendar.MonthBounds(day)
	n := 0
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if !c.IsWeekend(d) && !leave.CoversHoliday(holidays, d) {
			n++
		}
	}
	return n
}

// Calculate walks the period day by day. Holidays come first, then weekends; both pay only
// overtime. A working day pays the daily rate on approved leave, follows the attendance
// record when one exists, and pays nothing when none does. A full absence outranks a half
// day. The daily rate is the salary in force divided by the working days of that month.
func (c *Calculator) Calculate(in Inputs) Breakdown {
	out := Breakdown{
		EmployeeID:   in.EmployeeID,
		PeriodStart:  in.Period.Start.Format(calendar.DateLayout),
		PeriodEnd:    in.Period.End.Format(calendar.DateLayout),
		BaseSalary:   c.salaryOn(in, in.Period.End),
		ScheduledPay: money.Zero,
	}

	records := make(map[string]attendance.Record, len(in.Attendance))
	for _, r := range in.Attendance {
		records[r.WorkDate.Format(calendar.DateLayout)] = r
	}
	workingDays := map[string]int{}

	net, absence, late, overtime := money.Zero, money.Zero, money.Zero, money.Zero
	for d := in.Period.Start; !d.After(in.Period.End); d = d.AddDate(0, 0, 1) {
		key := d.Format(calendar.DateLayout)
		monthKey := calendar.MonthKey(d)
		expected, ok := workingDays[monthKey]
		if !ok {
			expected = c.WorkingDays(d, in.Holidays)
			workingDays[monthKey] = expected
		}

		monthly := c.salaryOn(in, d)
		daily := money.Zero
		if expected > 0 {
			daily = monthly.Div(decimal.NewFromInt(int64(expected)))
		}
		hourly := daily.Div(c.policy.DailyHours)
		overtimeRate := hourly.Mul(c.policy.OvertimeMultiplier)

		rec, recorded := records[key]
		holiday := leave.CoversHoliday(in.Holidays, d)
		day := Day{Date: key, Salary: monthly, DailyRate: money.Round(daily)}
		pay := money.Zero

		switch {
		case holiday || c.IsWeekend(d):
			if holiday {
				day.Kind = DayHoliday
				out.HolidayDays++
			} else {
				day.Kind = DayWeekend
				out.WeekendDays++
			}
			if recorded && rec.ExtraMinutes > 0 {
				pay = minutes(rec.ExtraMinutes, overtimeRate)
				overtime = overtime.Add(pay)
				day.ExtraMinutes = rec.ExtraMinutes
				out.TotalExtraMinutes += rec.ExtraMinutes
			}

		case leave.CoversRequest(in.Leave, d):
			day.Kind = DayLeave
			out.ExpectedWorkingDays++
			out.LeaveDays++
			out.ScheduledPay = out.ScheduledPay.Add(daily)
			pay = daily

		case recorded:
			out.ExpectedWorkingDays++
			out.ScheduledPay = out.ScheduledPay.Add(daily)
			base := daily
			switch {
			case rec.IsFullAbsent:
				base = money.Zero
				day.Kind = DayAbsent
				out.AbsentDays++
			case rec.IsHalfDay:
				base = daily.Div(two)
				day.Kind = DayHalf
				out.HalfDays++
			default:
				day.Kind = DayPresent
				out.PresentDays++
			}
			absence = absence.Add(daily.Sub(base))

			lateCost := minutes(rec.LateMinutes, hourly)
			extraPay := minutes(rec.ExtraMinutes, overtimeRate)
			late = late.Add(lateCost)
			overtime = overtime.Add(extraPay)
			pay = base.Sub(lateCost).Add(extraPay)

			day.LateMinutes, day.ExtraMinutes = rec.LateMinutes, rec.ExtraMinutes
			out.TotalLateMinutes += rec.LateMinutes
			out.TotalExtraMinutes += rec.ExtraMinutes

		default:
			day.Kind = DayUnrecorded
			out.ExpectedWorkingDays++
			out.AbsentDays++
			out.UnrecordedDays++
			out.ScheduledPay = out.ScheduledPay.Add(daily)
			absence = absence.Add(daily)
		}

		day.Pay = money.Round(pay)
		out.Days = append(out.Days, day)
		net = net.Add(pay)
	}

	if net.IsNegative() {
		net = money.Zero
	}
	out.ScheduledPay = money.Round(out.ScheduledPay)
	out.AbsenceDeduction = money.Round(absence)
	out.LateDeduction = money.Round(late)
	out.Deductions = money.Round(absence.Add(late))
	out.OvertimePay = money.Round(overtime)
	out.NetPay = money.Round(net)
	return out
}

func (c *Calculator) salaryOn(in Inputs, day time.Time) decimal.Decimal {
	if entry, ok := salary.ResolveAt(in.Salaries, day); ok {
		return entry.Amount
	}
	return in.FallbackSalary
}

// minutes prices n minutes at an hourly rate.
func minutes(n int, hourlyRate decimal.Decimal) decimal.Decimal {
	if n == 0 {
		return money.Zero
	}
	return hourlyRate.Mul(decimal.NewFromInt(int64(n))).Div(sixty)
}
