package salary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"shopledger/internal/domain/audit"
	"shopledger/internal/domain/staff"
	"shopledger/internal/platform/calendar"
	"shopledger/internal/platform/money"
)

type Employees interface {
	Find(ctx context.Context, employeeID string, shopIDs []string) (staff.Employee, error)
	LockTx(ctx context.Context, tx pgx.Tx, employeeID string, shopIDs []string) (staff.Employee, error)
	UpdateBaseSalaryTx(ctx context.Context, tx pgx.Tx, employeeID string, amount decimal.Decimal) error
}

type Auditor interface {
	RecordTx(ctx context.Context, tx pgx.Tx, entry audit.Entry) error
}

type Service struct {
	store     StoreAPI
	employees Employees
	audit     Auditor
}

func NewService(store StoreAPI, employees Employees, auditor Auditor) *Service {
	return &Service{store: store, employees: employees, audit: auditor}
}

// Append adds an effective-dated salary. The first entry is the initial salary; later ones
// are a promotion or demotion relative to the salary in force on their start date.
func (s *Service) Append(ctx context.Context, req AppendRequest, shopIDs []string, actorID string) (Entry, error) {
	amount := money.Round(req.Amount)
	if !amount.IsPositive() {
		return Entry{}, ErrInvalidAmount
	}
	start := calendar.Truncate(req.StartDate)

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return Entry{}, err
	}
	defer rollback(ctx, tx)

	emp, err := s.employees.LockTx(ctx, tx, req.EmployeeID, shopIDs)
	if err != nil {
		return Entry{}, err
	}
	released, err := s.store.LatestReleasedMonthTx(ctx, tx, emp.ID)
	if err != nil {
		return Entry{}, err
	}
	// A salary reaches every month from its start onwards.
	if released != "" && calendar.MonthKey(start) <= released {
		return Entry{}, ErrMonthLocked
	}
	history, err := s.store.ListTx(ctx, tx, emp.ID)
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{EmployeeID: emp.ID, Amount: amount, StartDate: start, Status: StatusInitial, CreatedBy: actorID}
	if len(history) > 0 {
		inForce, ok := ResolveAt(history, start)
		if !ok {
			return Entry{}, ErrBeforeInitial
		}
		switch amount.Cmp(inForce.Amount) {
		case 0:
			return Entry{}, ErrUnchangedSalary
		case 1:
			entry.Status = StatusPromotion
		default:
			entry.Status = StatusDemotion
		}
		entry.PreviousSalary = decimal.NewNullDecimal(inForce.Amount)
	}

	entry, err = s.store.InsertTx(ctx, tx, entry)
	if err != nil {
		return Entry{}, err
	}

	latest, _ := Latest(append(history, entry))
	if !latest.Amount.Equal(emp.BaseSalary) {
		if err := s.employees.UpdateBaseSalaryTx(ctx, tx, emp.ID, latest.Amount); err != nil {
			return Entry{}, err
		}
	}

	if err := s.audit.RecordTx(ctx, tx, audit.Entry{
		ShopID:     emp.ShopID,
		ActorID:    actorID,
		Action:     audit.ActionSalaryAppend,
		EntityType: audit.EntitySalaryHistory,
		EntityID:   entry.ID,
		After:      entry,
	}); err != nil {
		return Entry{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Entry{}, fmt.Errorf("commit salary: %w", err)
	}
	return entry, nil
}

func (s *Service) List(ctx context.Context, employeeID string, shopIDs []string) ([]Entry, error) {
	if _, err := s.employees.Find(ctx, employeeID, shopIDs); err != nil {
		return nil, err
	}
	return s.store.List(ctx, employeeID)
}

// History serves payroll, which has already resolved the employee.
func (s *Service) History(ctx context.Context, employeeID string) ([]Entry, error) {
	return s.store.List(ctx, employeeID)
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Warn("salary rollback failed", "err", err)
	}
}
