package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const requestColumns = "r.id, r.employee_id, r.start_date, r.end_date, r.leave_type, r.status, COALESCE(r.approver_id, ''), r.notes, r.decided_at, r.created_at"

const holidayColumns = "id, shop_id, start_date, end_date, description, created_at"

func (s *Store) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return s.DB.Begin(ctx)
}

func (s *Store) InsertRequest(ctx context.Context, req Request) (Request, error) {
	return scanRequest(s.DB.QueryRow(ctx, `
    WITH r AS (
      INSERT INTO leave_requests (employee_id, start_date, end_date, leave_type, status, notes)
      VALUES ($1,$2,$3,$4,$5,$6)
      RETURNING *
    )
    SELECT `+requestColumns+` FROM r
  `, req.EmployeeID, req.StartDate, req.EndDate, req.LeaveType, req.Status, req.Notes))
}

// LockRequestTx also returns the shop of the requesting employee. The employee row is locked
// too, which orders a decision against a concurrent payroll release.
func (s *Store) LockRequestTx(ctx context.Context, tx pgx.Tx, requestID string, shopIDs []string) (Request, string, error) {
	var (
		r      Request
		shopID string
	)
	err := tx.QueryRow(ctx, `
    SELECT `+requestColumns+`, e.shop_id
    FROM leave_requests r
    JOIN employees e ON e.id = r.employee_id
    WHERE r.id::text = $1 AND e.shop_id::text = ANY($2::text[])
    FOR UPDATE OF r, e
  `, requestID, shopIDs).Scan(&r.ID, &r.EmployeeID, &r.StartDate, &r.EndDate, &r.LeaveType, &r.Status, &r.ApproverID, &r.Notes, &r.DecidedAt, &r.CreatedAt, &shopID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, "", ErrRequestNotFound
	}
	if err != nil {
		return Request{}, "", err
	}
	r.Days, _ = CountDays(r.StartDate, r.EndDate)
	return r, shopID, nil
}

func (s *Store) DecideTx(ctx context.Context, tx pgx.Tx, requestID, status, approverID string) (Request, error) {
	return scanRequest(tx.QueryRow(ctx, `
    UPDATE leave_requests r
    SET status = $2, approver_id = $3, decided_at = now()
    WHERE r.id::text = $1
    RETURNING `+requestColumns, requestID, status, approverID))
}

func (s *Store) ListRequests(ctx context.Context, shopIDs []string, filter RequestFilter) ([]Request, error) {
	query := `
    SELECT ` + requestColumns + `
    FROM leave_requests r
    JOIN employees e ON e.id = r.employee_id
    WHERE e.shop_id::text = ANY($1::text[])`
	args := []any{shopIDs}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND r.employee_id::text = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND r.status = $%d", len(args))
	}
	query += " ORDER BY r.start_date DESC"
	return s.queryRequests(ctx, query, args...)
}

func (s *Store) ApprovedBetween(ctx context.Context, employeeID string, from, to time.Time) ([]Request, error) {
	return s.queryRequests(ctx, `
    SELECT `+requestColumns+`
    FROM leave_requests r
    WHERE r.employee_id::text = $1 AND r.status = 'approved'
      AND r.start_date <= $3 AND r.end_date >= $2
    ORDER BY r.start_date
  `, employeeID, from, to)
}

func (s *Store) queryRequests(ctx context.Context, query string, args ...any) ([]Request, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRequest(row pgx.Row) (Request, error) {
	var r Request
	err := row.Scan(&r.ID, &r.EmployeeID, &r.StartDate, &r.EndDate, &r.LeaveType, &r.Status, &r.ApproverID, &r.Notes, &r.DecidedAt, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrRequestNotFound
	}
	if err != nil {
		return Request{}, err
	}
	r.Days, _ = CountDays(r.StartDate, r.EndDate)
	return r, nil
}

// EmployeeReleasedTx reports whether any month in [fromMonth, toMonth] is released for the employee.
func (s *Store) EmployeeReleasedTx(ctx context.Context, tx pgx.Tx, employeeID, fromMonth, toMonth string) (bool, error) {
	var released bool
	err := tx.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM payroll_releases
      WHERE employee_id::text = $1 AND salary_month BETWEEN $2 AND $3
    )
  `, employeeID, fromMonth, toMonth).Scan(&released)
	return released, err
}

// ShopReleasedTx is EmployeeReleasedTx for any employee of the shop.
func (s *Store) ShopReleasedTx(ctx context.Context, tx pgx.Tx, shopID, fromMonth, toMonth string) (bool, error) {
	var released bool
	err := tx.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM payroll_releases pr
      JOIN employees e ON e.id = pr.employee_id
      WHERE e.shop_id::text = $1 AND pr.salary_month BETWEEN $2 AND $3
    )
  `, shopID, fromMonth, toMonth).Scan(&released)
	return released, err
}

func (s *Store) InsertHolidayTx(ctx context.Context, tx pgx.Tx, h Holiday) (Holiday, error) {
	return scanHoliday(tx.QueryRow(ctx, `
    INSERT INTO holidays (shop_id, start_date, end_date, description)
    VALUES ($1,$2,$3,$4)
    RETURNING `+holidayColumns, h.ShopID, h.StartDate, h.EndDate, h.Description))
}

func (s *Store) DeleteHolidayTx(ctx context.Context, tx pgx.Tx, holidayID string, shopIDs []string) (Holiday, error) {
	return scanHoliday(tx.QueryRow(ctx, `
    DELETE FROM holidays
    WHERE id::text = $1 AND shop_id::text = ANY($2::text[])
    RETURNING `+holidayColumns, holidayID, shopIDs))
}

// ListHolidays returns holidays overlapping [from, to]; a zero bound is open.
func (s *Store) ListHolidays(ctx context.Context, shopID string, from, to time.Time) ([]Holiday, error) {
	query := "SELECT " + holidayColumns + " FROM holidays WHERE shop_id::text = $1"
	args := []any{shopID}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(" AND start_date <= $%d", len(args))
	}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(" AND end_date >= $%d", len(args))
	}
	query += " ORDER BY start_date"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Holiday
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func scanHoliday(row pgx.Row) (Holiday, error) {
	var h Holiday
	err := row.Scan(&h.ID, &h.ShopID, &h.StartDate, &h.EndDate, &h.Description, &h.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Holiday{}, ErrHolidayNotFound
	}
	return h, err
}
