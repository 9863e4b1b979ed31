package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"shopledger/internal/domain/audit"
	"shopledger/internal/domain/staff"
	"shopledger/internal/platform/calendar"
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
}

func NewService(store StoreAPI, employees Employees, auditor Auditor) *Service {
	return &Service{store: store, employees: employees, audit: auditor}
}

// Create files a pending leave request. Only approved requests affect payroll.
func (s *Service) Create(ctx context.Context, req CreateRequest, shopIDs []string) (Request, error) {
	leaveType := strings.TrimSpace(req.LeaveType)
	if leaveType == "" {
		return Request{}, ErrLeaveTypeRequired
	}
	start, end := calendar.Truncate(req.StartDate), calendar.Truncate(req.EndDate)
	if _, err := CountDays(start, end); err != nil {
		return Request{}, err
	}
	if _, err := s.employees.Find(ctx, req.EmployeeID, shopIDs); err != nil {
		return Request{}, err
	}
	return s.store.InsertRequest(ctx, Request{
		EmployeeID: req.EmployeeID,
		StartDate:  start,
		EndDate:    end,
		LeaveType:  leaveType,
		Status:     StatusPending,
		Notes:      req.Notes,
	})
}

// Decide approves or rejects a pending request. A decided request never changes again.
func (s *Service) Decide(ctx context.Context, requestID, decision string, shopIDs []string, approverID string) (Request, error) {
	if decision != StatusApproved && decision != StatusRejected {
		return Request{}, ErrInvalidDecision
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return Request{}, err
	}
	defer rollback(ctx, tx)

	current, shopID, err := s.store.LockRequestTx(ctx, tx, requestID, shopIDs)
	if err != nil {
		return Request{}, err
	}
	if current.Status != StatusPending {
		return Request{}, ErrAlreadyDecided
	}
	// Rejected requests never reach payroll, so only approvals are month-checked.
	if decision == StatusApproved {
		released, err := s.store.EmployeeReleasedTx(ctx, tx, current.EmployeeID, calendar.MonthKey(current.StartDate), calendar.MonthKey(current.EndDate))
		if err != nil {
			return Request{}, err
		}
		if released {
			return Request{}, ErrMonthLocked
		}
	}
	decided, err := s.store.DecideTx(ctx, tx, requestID, decision, approverID)
	if err != nil {
		return Request{}, err
	}
	if err := s.audit.RecordTx(ctx, tx, audit.Entry{
		ShopID:     shopID,
		ActorID:    approverID,
		Action:     audit.ActionLeaveDecision,
		EntityType: audit.EntityLeaveRequest,
		EntityID:   requestID,
		Before:     map[string]string{"status": current.Status},
		After:      map[string]string{"status": decided.Status},
	}); err != nil {
		return Request{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Request{}, fmt.Errorf("commit leave decision: %w", err)
	}
	return decided, nil
}

func (s *Service) ListRequests(ctx context.Context, shopIDs []string, filter RequestFilter) ([]Request, error) {
	return s.store.ListRequests(ctx, shopIDs, filter)
}

// ApprovedBetween returns approved requests overlapping [from, to].
func (s *Service) ApprovedBetween(ctx context.Context, employeeID string, from, to time.Time) ([]Request, error) {
	return s.store.ApprovedBetween(ctx, employeeID, calendar.Truncate(from), calendar.Truncate(to))
}

func (s *Service) CreateHoliday(ctx context.Context, req HolidayRequest, shopIDs []string, actorID string) (Holiday, error) {
	if !slices.Contains(shopIDs, req.ShopID) {
		return Holiday{}, ErrInvalidShop
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return Holiday{}, ErrDescriptionRequired
	}
	start, end := calendar.Truncate(req.StartDate), calendar.Truncate(req.EndDate)
	if end.Before(start) {
		return Holiday{}, ErrInvalidDateRange
	}

	var out Holiday
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.ensureOpen(ctx, tx, req.ShopID, start, end); err != nil {
			return err
		}
		var err error
		out, err = s.store.InsertHolidayTx(ctx, tx, Holiday{ShopID: req.ShopID, StartDate: start, EndDate: end, Description: description})
		if err != nil {
			return err
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ShopID:     out.ShopID,
			ActorID:    actorID,
			Action:     audit.ActionHolidayChange,
			EntityType: audit.EntityHoliday,
			EntityID:   out.ID,
			After:      out,
		})
	})
	return out, err
}

func (s *Service) DeleteHoliday(ctx context.Context, holidayID string, shopIDs []string, actorID string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		removed, err := s.store.DeleteHolidayTx(ctx, tx, holidayID, shopIDs)
		if err != nil {
			return err
		}
		if err := s.ensureOpen(ctx, tx, removed.ShopID, removed.StartDate, removed.EndDate); err != nil {
			return err
		}
		return s.audit.RecordTx(ctx, tx, audit.Entry{
			ShopID:     removed.ShopID,
			ActorID:    actorID,
			Action:     audit.ActionHolidayChange,
			EntityType: audit.EntityHoliday,
			EntityID:   removed.ID,
			Before:     removed,
		})
	})
}

// ListHolidays returns the shop's holidays overlapping [from, to]; zero bounds are open.
func (s *Service) ListHolidays(ctx context.Context, shopID string, shopIDs []string, from, to time.Time) ([]Holiday, error) {
	if !slices.Contains(shopIDs, shopID) {
		return nil, ErrInvalidShop
	}
	return s.store.ListHolidays(ctx, shopID, from, to)
}

// HolidaysBetween serves payroll, which has already resolved the shop.
func (s *Service) HolidaysBetween(ctx context.Context, shopID string, from, to time.Time) ([]Holiday, error) {
	return s.store.ListHolidays(ctx, shopID, calendar.Truncate(from), calendar.Truncate(to))
}

// ensureOpen fails when a holiday span touches a month already released for any employee of the shop.
func (s *Service) ensureOpen(ctx context.Context, tx pgx.Tx, shopID string, start, end time.Time) error {
	released, err := s.store.ShopReleasedTx(ctx, tx, shopID, calendar.MonthKey(start), calendar.MonthKey(end))
	if err != nil {
		return err
	}
	if released {
		return ErrMonthLocked
	}
	return nil
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
	return tx.Commit(ctx)
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Warn("leave rollback failed", "err", err)
	}
}
