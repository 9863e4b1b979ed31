package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"shopledger/internal/domain/audit"
	"shopledger/internal/domain/staff"
	"shopledger/internal/platform/calendar"
)

type Employees interface {
	Find(ctx context.Context, employeeID string, shopIDs []string) (staff.Employee, error)
	LockTx(ctx context.Context, tx pgx.Tx, employeeID string, shopIDs []string) (staff.Employee, error)
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

// Touch returns the record for day, creating an empty one on first access.
func (s *Service) Touch(ctx context.Context, employeeID string, day time.Time, shopIDs []string) (Record, error) {
	var out Record
	err := s.inMonth(ctx, employeeID, day, shopIDs, func(tx pgx.Tx, _ staff.Employee) error {
		var err error
		out, err = s.store.TouchTx(ctx, tx, employeeID, calendar.Truncate(day))
		return err
	})
	return out, err
}

// Correct applies an admin patch to the day's record, creating the record when absent.
func (s *Service) Correct(ctx context.Context, employeeID string, day time.Time, patch Patch, shopIDs []string, actorID string) (Record, error) {
	day = calendar.Truncate(day)
	var out Record
	err := s.inMonth(ctx, employeeID, day, shopIDs, func(tx pgx.Tx, emp staff.Employee) error {
		current, err := s.store.LockDayTx(ctx, tx, employeeID, day)
		existed := err == nil
		switch {
		case errors.Is(err, ErrRecordNotFound):
			current = Record{EmployeeID: employeeID, WorkDate: day}
		case err != nil:
			return err
		}

		next := patch.Apply(current)
		if next.LateMinutes < 0 || next.ExtraMinutes < 0 {
			return ErrInvalidMinutes
		}
		out, err = s.store.UpsertTx(ctx, tx, next)
		if err != nil {
			return err
		}

		entry := audit.Entry{
			ShopID:     emp.ShopID,
			ActorID:    actorID,
			Action:     audit.ActionAttendanceEdit,
			EntityType: audit.EntityAttendance,
			EntityID:   out.ID,
			After:      out,
		}
		if existed {
			entry.Before = current
		}
		return s.audit.RecordTx(ctx, tx, entry)
	})
	return out, err
}

// Delete removes exactly the record of day; other days are untouched.
func (s *Service) Delete(ctx context.Context, employeeID string, day time.Time, shopIDs []string, actorID string) error {
	day = calendar.Truncate(day)
	return s.inMonth(ctx, employeeID, day, shopIDs, func(tx pgx.Tx, emp staff.Employee) error {
		current, err := s.store.LockDayTx(ctx, tx, employeeID, day)
		if err != nil {
			return err
		}
		deleted, err := s.store.DeleteTx(ctx, tx, employeeID, day)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrRecordNotFound
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ShopID:     emp.ShopID,
			ActorID:    actorID,
			Action:     audit.ActionAttendanceDrop,
			EntityType: audit.EntityAttendance,
			EntityID:   current.ID,
			Before:     current,
		})
	})
}

func (s *Service) ListRange(ctx context.Context, employeeID string, from, to time.Time, shopIDs []string) ([]Record, error) {
	from, to = calendar.Truncate(from), calendar.Truncate(to)
	if from.After(to) {
		return nil, ErrInvalidDateRange
	}
	if _, err := s.employees.Find(ctx, employeeID, shopIDs); err != nil {
		return nil, err
	}
	return s.store.Between(ctx, employeeID, from, to)
}

// Between serves payroll, which has already resolved the employee.
func (s *Service) Between(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error) {
	return s.store.Between(ctx, employeeID, calendar.Truncate(from), calendar.Truncate(to))
}

// inMonth runs fn in a transaction holding the employee lock, after checking that payroll
// for day's month has not been released. Release takes the same lock.
func (s *Service) inMonth(ctx context.Context, employeeID string, day time.Time, shopIDs []string, fn func(pgx.Tx, staff.Employee) error) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer rollback(ctx, tx)

	emp, err := s.employees.LockTx(ctx, tx, employeeID, shopIDs)
	if err != nil {
		return err
	}
	released, err := s.store.MonthReleasedTx(ctx, tx, employeeID, calendar.MonthKey(day))
	if err != nil {
		return err
	}
	if released {
		return ErrMonthLocked
	}
	if err := fn(tx, emp); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit attendance: %w", err)
	}
	return nil
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Warn("attendance rollback failed", "err", err)
	}
}
