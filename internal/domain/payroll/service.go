package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"shopledger/internal/domain/attendance"
	"shopledger/internal/domain/audit"
	"shopledger/internal/domain/leave"
	"shopledger/internal/domain/loans"
	"shopledger/internal/domain/salary"
	"shopledger/internal/domain/staff"
	"shopledger/internal/platform/money"
)

type Employees interface {
	Find(ctx context.Context, employeeID string, shopIDs []string) (staff.Employee, error)
	LockTx(ctx context.Context, tx pgx.Tx, employeeID string, shopIDs []string) (staff.Employee, error)
}

type AttendanceSource interface {
	Between(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error)
}

type SalarySource interface {
	History(ctx context.Context, employeeID string) ([]salary.Entry, error)
}

type LeaveSource interface {
	ApprovedBetween(ctx context.Context, employeeID string, from, to time.Time) ([]leave.Request, error)
	HolidaysBetween(ctx context.Context, shopID string, from, to time.Time) ([]leave.Holiday, error)
}

// LoanLedger is the part of the loans service a release deducts from.
type LoanLedger interface {
	LockAdvancesTx(ctx context.Context, tx pgx.Tx, employeeID string) ([]loans.Advance, error)
	DeductAdvancesTx(ctx context.Context, tx pgx.Tx, open []loans.Advance, amount decimal.Decimal) ([]loans.Allocation, error)
	LockLoanTx(ctx context.Context, tx pgx.Tx, loanID string, shopIDs []string) (loans.Loan, error)
	PayTx(ctx context.Context, tx pgx.Tx, loan loans.Loan, amount decimal.Decimal, paidOn time.Time, actorID, releaseID string) (loans.Loan, loans.Payment, error)
}

type Auditor interface {
	RecordTx(ctx context.Context, tx pgx.Tx, entry audit.Entry) error
}

// ReleaseNotifier is told about a committed release. It must not block.
type ReleaseNotifier interface {
	NotifyPayrollRelease(release Release, employee staff.Employee)
}

type Sources struct {
	Attendance AttendanceSource
	Salary     SalarySource
	Leave      LeaveSource
}

type Service struct {
	store      StoreAPI
	calculator *Calculator
	employees  Employees
	sources    Sources
	loans      LoanLedger
	audit      Auditor

	Notifier ReleaseNotifier
	Now      func() time.Time
}

func NewService(store StoreAPI, calculator *Calculator, employees Employees, sources Sources, ledger LoanLedger, auditor Auditor) *Service {
	return &Service{
		store:      store,
		calculator: calculator,
		employees:  employees,
		sources:    sources,
		loans:      ledger,
		audit:      auditor,
		Now:        time.Now,
	}
}

// Calculate is a read-only projection of the employee's ledgers over period.
func (s *Service) Calculate(ctx context.Context, employeeID string, period Period, shopIDs []string) (Breakdown, error) {
	emp, err := s.employees.Find(ctx, employeeID, shopIDs)
	if err != nil {
		return Breakdown{}, err
	}
	return s.calculate(ctx, emp, period)
}

func (s *Service) calculate(ctx context.Context, emp staff.Employee, period Period) (Breakdown, error) {
	records, err := s.sources.Attendance.Between(ctx, emp.ID, period.Start, period.End)
	if err != nil {
		return Breakdown{}, fmt.Errorf("load attendance: %w", err)
	}
	history, err := s.sources.Salary.History(ctx, emp.ID)
	if err != nil {
		return Breakdown{}, fmt.Errorf("load salary history: %w", err)
	}
	approved, err := s.sources.Leave.ApprovedBetween(ctx, emp.ID, period.Start, period.End)
	if err != nil {
		return Breakdown{}, fmt.Errorf("load leave: %w", err)
	}
	spanStart, spanEnd := period.Span()
	holidays, err := s.sources.Leave.HolidaysBetween(ctx, emp.ShopID, spanStart, spanEnd)
	if err != nil {
		return Breakdown{}, fmt.Errorf("load holidays: %w", err)
	}

	return s.calculator.Calculate(Inputs{
		EmployeeID:     emp.ID,
		FallbackSalary: emp.BaseSalary,
		Period:         period,
		Attendance:     records,
		Salaries:       history,
		Leave:          approved,
		Holidays:       holidays,
	}), nil
}

// Release freezes one month of pay for an employee. The calculation, every adjustment
// check, the release row, advance deductions and the loan payment share one transaction.
func (s *Service) Release(ctx context.Context, req ReleaseRequest, shopIDs []string, actorID string) (Release, error) {
	adjustments := []decimal.Decimal{req.AdvanceDeduction, req.Bonus, req.LoanDeduction, req.FineAmount, req.OvertimeBonus, req.OtherDeduction}
	if !money.NonNegative(adjustments...) {
		return Release{}, ErrInvalidAdjustment
	}
	advance, loanDeduction := money.Round(req.AdvanceDeduction), money.Round(req.LoanDeduction)
	if loanDeduction.IsPositive() && req.LoanID == "" {
		return Release{}, ErrLoanRequired
	}
	period, err := MonthPeriod(req.Month)
	if err != nil {
		return Release{}, err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return Release{}, err
	}
	defer rollback(ctx, tx)

	emp, err := s.employees.LockTx(ctx, tx, req.EmployeeID, shopIDs)
	if err != nil {
		return Release{}, err
	}
	exists, err := s.store.ReleaseExistsTx(ctx, tx, emp.ID, period.Month)
	if err != nil {
		return Release{}, err
	}
	if exists {
		return Release{}, ErrAlreadyReleased
	}

	breakdown, err := s.calculate(ctx, emp, period)
	if err != nil {
		return Release{}, err
	}

	open, err := s.loans.LockAdvancesTx(ctx, tx, emp.ID)
	if err != nil {
		return Release{}, err
	}
	outstanding := loans.TotalOutstanding(open)
	if advance.GreaterThan(outstanding) {
		return Release{}, loans.ErrAdvanceExceedsOutstanding
	}

	var loan loans.Loan
	if req.LoanID != "" {
		loan, err = s.loans.LockLoanTx(ctx, tx, req.LoanID, shopIDs)
		if err != nil {
			return Release{}, err
		}
		if loan.EmployeeID != emp.ID {
			return Release{}, loans.ErrLoanNotFound
		}
		if loanDeduction.IsPositive() {
			if loan.Status == loans.StatusCompleted {
				return Release{}, loans.ErrLoanCompleted
			}
			if loanDeduction.GreaterThan(loan.RemainingBalance) {
				return Release{}, loans.ErrPaymentExceedsBalance
			}
		}
	}

	gross := breakdown.NetPay
	bonus, overtime := money.Round(req.Bonus), money.Round(req.OvertimeBonus)
	fine, other := money.Round(req.FineAmount), money.Round(req.OtherDeduction)
	net := money.Sum(gross, bonus, overtime).Sub(money.Sum(advance, loanDeduction, fine, other))
	if net.IsNegative() {
		return Release{}, ErrDeductionsExceedPay
	}

	snapshot := Snapshot{Breakdown: breakdown, OutstandingAdvance: outstanding, LoanBalanceBefore: loan.RemainingBalance}
	for _, a := range plannedAllocations(open, advance) {
		snapshot.AdvanceAllocations = append(snapshot.AdvanceAllocations, Allocation{AdvanceID: a.AdvanceID, Amount: a.Amount})
	}
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return Release{}, err
	}

	now := s.Now()
	release, err := s.store.InsertReleaseTx(ctx, tx, Release{
		EmployeeID:       emp.ID,
		ShopID:           emp.ShopID,
		SalaryMonth:      period.Month,
		BaseSalary:       breakdown.BaseSalary,
		GrossSalary:      gross,
		AdvanceDeduction: advance,
		Bonus:            bonus,
		LoanDeduction:    loanDeduction,
		FineAmount:       fine,
		OvertimeBonus:    overtime,
		OtherDeduction:   other,
		NetPayable:       net,
		LoanID:           req.LoanID,
		Status:           StatusReleased,
		ReleasedAt:       &now,
		ReleasedBy:       actorID,
		Snapshot:         snapshotJSON,
	})
	if err != nil {
		return Release{}, err
	}

	if advance.IsPositive() {
		if _, err := s.loans.DeductAdvancesTx(ctx, tx, open, advance); err != nil {
			return Release{}, err
		}
	}
	if loanDeduction.IsPositive() {
		if _, _, err := s.loans.PayTx(ctx, tx, loan, loanDeduction, period.End, actorID, release.ID); err != nil {
			return Release{}, err
		}
	}

	if err := s.audit.RecordTx(ctx, tx, audit.Entry{
		ShopID:     emp.ShopID,
		ActorID:    actorID,
		Action:     audit.ActionPayrollRelease,
		EntityType: audit.EntityPayrollRelease,
		EntityID:   release.ID,
		After: map[string]any{
			"salaryMonth": release.SalaryMonth,
			"gross":       release.GrossSalary,
			"netPayable":  release.NetPayable,
		},
	}); err != nil {
		return Release{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Release{}, fmt.Errorf("commit payroll release: %w", err)
	}

	if s.Notifier != nil {
		s.Notifier.NotifyPayrollRelease(release, emp)
	}
	return release, nil
}

// plannedAllocations previews the oldest-first split; amount was already checked against
// the outstanding total.
func plannedAllocations(open []loans.Advance, amount decimal.Decimal) []loans.Allocation {
	allocations, _ := loans.AllocateAdvances(open, amount)
	return allocations
}

func (s *Service) GetRelease(ctx context.Context, releaseID string, shopIDs []string) (Release, error) {
	return s.store.GetRelease(ctx, releaseID, shopIDs)
}

func (s *Service) ListReleases(ctx context.Context, shopIDs []string, filter ReleaseFilter, limit, offset int) ([]Release, error) {
	return s.store.ListReleases(ctx, shopIDs, filter, limit, offset)
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Warn("payroll rollback failed", "err", err)
	}
}
