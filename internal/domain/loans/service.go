package loans

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"shopledger/internal/domain/audit"
	"shopledger/internal/domain/staff"
	"shopledger/internal/platform/calendar"
	"shopledger/internal/platform/money"
)

type Employees interface {
	Find(ctx context.Context, employeeID string, shopIDs []string) (staff.Employee, error)
}

type Auditor interface {
	RecordTx(ctx context.Context, tx pgx.Tx, entry audit.Entry) error
}

type Service struct {
	store     StoreAPI
	employees Employees
	audit     Auditor

	Now func() time.Time
}

func NewService(store StoreAPI, employees Employees, auditor Auditor) *Service {
	return &Service{store: store, employees: employees, audit: auditor, Now: time.Now}
}

func (s *Service) CreateLoan(ctx context.Context, req CreateLoanRequest, shopIDs []string, actorID string) (Loan, error) {
	principal := money.Round(req.Principal)
	if !principal.IsPositive() {
		return Loan{}, ErrInvalidAmount
	}
	if req.InterestRate.IsNegative() {
		return Loan{}, ErrInvalidRate
	}
	emi := money.Round(req.MonthlyEMI)
	if emi.IsNegative() {
		return Loan{}, ErrInvalidEMI
	}
	emp, err := s.employees.Find(ctx, req.EmployeeID, shopIDs)
	if err != nil {
		return Loan{}, err
	}

	total := TotalPayable(principal, req.InterestRate)
	var out Loan
	err = s.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		out, err = s.store.InsertLoanTx(ctx, tx, Loan{
			EmployeeID:       emp.ID,
			Principal:        principal,
			InterestRate:     req.InterestRate,
			TotalPayable:     total,
			MonthlyEMI:       emi,
			RemainingBalance: total,
			Status:           StatusActive,
			Notes:            req.Notes,
			CreatedBy:        actorID,
		})
		if err != nil {
			return err
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ShopID:     emp.ShopID,
			ActorID:    actorID,
			Action:     audit.ActionLoanCreate,
			EntityType: audit.EntityLoan,
			EntityID:   out.ID,
			After:      out,
		})
	})
	return out, err
}

// RecordPayment books a manual repayment made outside payroll.
func (s *Service) RecordPayment(ctx context.Context, req PaymentRequest, shopIDs []string, actorID string) (Loan, Payment, error) {
	paidOn := req.PaidOn
	if paidOn.IsZero() {
		paidOn = s.Now()
	}
	var (
		loan    Loan
		payment Payment
	)
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		current, err := s.store.LockLoanTx(ctx, tx, req.LoanID, shopIDs)
		if err != nil {
			return err
		}
		loan, payment, err = s.PayTx(ctx, tx, current, req.Amount, paidOn, actorID, "")
		return err
	})
	if err != nil {
		return Loan{}, Payment{}, err
	}
	return loan, payment, nil
}

// LockLoanTx locks a loan for a caller that will pay it inside tx.
func (s *Service) LockLoanTx(ctx context.Context, tx pgx.Tx, loanID string, shopIDs []string) (Loan, error) {
	return s.store.LockLoanTx(ctx, tx, loanID, shopIDs)
}

// PayTx applies a payment to a loan already locked in tx. releaseID links payroll deductions.
func (s *Service) PayTx(ctx context.Context, tx pgx.Tx, loan Loan, amount decimal.Decimal, paidOn time.Time, actorID, releaseID string) (Loan, Payment, error) {
	before := loan
	next, err := ApplyPayment(loan, amount)
	if err != nil {
		return Loan{}, Payment{}, err
	}
	if err := s.store.UpdateBalanceTx(ctx, tx, next); err != nil {
		return Loan{}, Payment{}, err
	}
	payment, err := s.store.InsertPaymentTx(ctx, tx, Payment{
		LoanID:           loan.ID,
		Amount:           money.Round(amount),
		PaidOn:           calendar.Truncate(paidOn),
		RecordedBy:       actorID,
		PayrollReleaseID: releaseID,
	})
	if err != nil {
		return Loan{}, Payment{}, err
	}
	if err := s.audit.RecordTx(ctx, tx, audit.Entry{
		ShopID:     loan.ShopID,
		ActorID:    actorID,
		Action:     audit.ActionLoanPayment,
		EntityType: audit.EntityLoan,
		EntityID:   loan.ID,
		Before:     map[string]any{"remainingBalance": before.RemainingBalance, "status": before.Status},
		After:      map[string]any{"remainingBalance": next.RemainingBalance, "status": next.Status, "paymentId": payment.ID},
	}); err != nil {
		return Loan{}, Payment{}, err
	}
	return next, payment, nil
}

func (s *Service) GetLoan(ctx context.Context, loanID string, shopIDs []string) (Loan, error) {
	loan, err := s.store.GetLoan(ctx, loanID, shopIDs)
	if err != nil {
		return Loan{}, err
	}
	loan.Payments, err = s.store.ListPayments(ctx, loan.ID)
	if err != nil {
		return Loan{}, err
	}
	return loan, nil
}

func (s *Service) ListLoans(ctx context.Context, shopIDs []string, filter LoanFilter) ([]Loan, error) {
	return s.store.ListLoans(ctx, shopIDs, filter)
}

func (s *Service) CreateAdvance(ctx context.Context, req CreateAdvanceRequest, shopIDs []string, actorID string) (Advance, error) {
	amount := money.Round(req.Amount)
	if !amount.IsPositive() {
		return Advance{}, ErrInvalidAmount
	}
	emp, err := s.employees.Find(ctx, req.EmployeeID, shopIDs)
	if err != nil {
		return Advance{}, err
	}
	givenOn := req.GivenOn
	if givenOn.IsZero() {
		givenOn = s.Now()
	}

	var out Advance
	err = s.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		out, err = s.store.InsertAdvanceTx(ctx, tx, Advance{
			EmployeeID: emp.ID,
			Amount:     amount,
			GivenOn:    calendar.Truncate(givenOn),
			Notes:      req.Notes,
			CreatedBy:  actorID,
		})
		if err != nil {
			return err
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ShopID:     emp.ShopID,
			ActorID:    actorID,
			Action:     audit.ActionAdvanceCreate,
			EntityType: audit.EntityAdvance,
			EntityID:   out.ID,
			After:      out,
		})
	})
	return out, err
}

// OutstandingAdvance is the employee's total advance not yet deducted from payroll.
func (s *Service) OutstandingAdvance(ctx context.Context, employeeID string, shopIDs []string) (decimal.Decimal, error) {
	if _, err := s.employees.Find(ctx, employeeID, shopIDs); err != nil {
		return decimal.Zero, err
	}
	return s.store.OutstandingAdvance(ctx, employeeID)
}

// LockAdvancesTx returns the employee's open advances, oldest first, locked in tx.
func (s *Service) LockAdvancesTx(ctx context.Context, tx pgx.Tx, employeeID string) ([]Advance, error) {
	return s.store.LockOpenAdvancesTx(ctx, tx, employeeID)
}

// DeductAdvancesTx takes amount from the given open advances, oldest first.
func (s *Service) DeductAdvancesTx(ctx context.Context, tx pgx.Tx, open []Advance, amount decimal.Decimal) ([]Allocation, error) {
	allocations, err := AllocateAdvances(open, amount)
	if err != nil {
		return nil, err
	}
	for _, a := range allocations {
		if err := s.store.DeductAdvanceTx(ctx, tx, a.AdvanceID, a.Amount); err != nil {
			return nil, err
		}
	}
	return allocations, nil
}

func (s *Service) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer rollback(ctx, tx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit loans: %w", err)
	}
	return nil
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Warn("loans rollback failed", "err", err)
	}
}
