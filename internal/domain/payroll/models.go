package payroll

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"shopledger/internal/domain/attendance"
	"shopledger/internal/domain/leave"
	"shopledger/internal/domain/salary"
)

// Inputs is everything a calculation reads. Holidays must cover whole months of the period.
type Inputs struct {
	EmployeeID     string
	FallbackSalary decimal.Decimal
	Period         Period
	Attendance     []attendance.Record
	Salaries       []salary.Entry
	Leave          []leave.Request
	Holidays       []leave.Holiday
}

type Day struct {
	Date         string          `json:"date"`
	Kind         string          `json:"kind"`
	Salary       decimal.Decimal `json:"salary"`
	DailyRate    decimal.Decimal `json:"dailyRate"`
	LateMinutes  int             `json:"lateMinutes"`
	ExtraMinutes int             `json:"extraMinutes"`
	Pay          decimal.Decimal `json:"pay"`
}

// Breakdown is the calculation result, stored verbatim in a release snapshot.
type Breakdown struct {
	EmployeeID          string          `json:"employeeId"`
	PeriodStart         string          `json:"periodStart"`
	PeriodEnd           string          `json:"periodEnd"`
	BaseSalary          decimal.Decimal `json:"baseSalary"`
	ExpectedWorkingDays int             `json:"expectedWorkingDays"`
	PresentDays         int             `json:"presentDays"`
	HalfDays            int             `json:"halfDays"`
	AbsentDays          int             `json:"absentDays"`
	UnrecordedDays      int             `json:"unrecordedDays"`
	LeaveDays           int             `json:"leaveDays"`
	HolidayDays         int             `json:"holidayDays"`
	WeekendDays         int             `json:"weekendDays"`
	TotalLateMinutes    int             `json:"totalLateMinutes"`
	TotalExtraMinutes   int             `json:"totalExtraMinutes"`
	ScheduledPay        decimal.Decimal `json:"scheduledPay"`
	AbsenceDeduction    decimal.Decimal `json:"absenceDeduction"`
	LateDeduction       decimal.Decimal `json:"lateDeduction"`
	Deductions          decimal.Decimal `json:"deductions"`
	OvertimePay         decimal.Decimal `json:"overtimePay"`
	NetPay              decimal.Decimal `json:"netPay"`
	Days                []Day           `json:"days"`
}

type ReleaseRequest struct {
	EmployeeID       string
	Month            string
	AdvanceDeduction decimal.Decimal
	Bonus            decimal.Decimal
	LoanID           string
	LoanDeduction    decimal.Decimal
	FineAmount       decimal.Decimal
	OvertimeBonus    decimal.Decimal
	OtherDeduction   decimal.Decimal
}

type Release struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employeeId"`
	EmployeeName     string          `json:"employeeName"`
	ShopID           string          `json:"shopId"`
	SalaryMonth      string          `json:"salaryMonth"`
	BaseSalary       decimal.Decimal `json:"baseSalary"`
	GrossSalary      decimal.Decimal `json:"grossSalary"`
	AdvanceDeduction decimal.Decimal `json:"advanceDeduction"`
	Bonus            decimal.Decimal `json:"bonus"`
	LoanDeduction    decimal.Decimal `json:"loanDeduction"`
	FineAmount       decimal.Decimal `json:"fineAmount"`
	OvertimeBonus    decimal.Decimal `json:"overtimeBonus"`
	OtherDeduction   decimal.Decimal `json:"otherDeduction"`
	NetPayable       decimal.Decimal `json:"netPayable"`
	LoanID           string          `json:"loanId,omitempty"`
	Status           string          `json:"status"`
	ReleasedAt       *time.Time      `json:"releasedAt,omitempty"`
	ReleasedBy       string          `json:"releasedBy,omitempty"`
	Snapshot         json.RawMessage `json:"calculationSnapshot"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// Snapshot preserves what a release was computed from.
type Snapshot struct {
	Breakdown          Breakdown       `json:"breakdown"`
	OutstandingAdvance decimal.Decimal `json:"outstandingAdvanceBefore"`
	LoanBalanceBefore  decimal.Decimal `json:"loanBalanceBefore"`
	AdvanceAllocations []Allocation    `json:"advanceAllocations,omitempty"`
}

type Allocation struct {
	AdvanceID string          `json:"advanceId"`
	Amount    decimal.Decimal `json:"amount"`
}

type ReleaseFilter struct {
	EmployeeID string
	Month      string
}
