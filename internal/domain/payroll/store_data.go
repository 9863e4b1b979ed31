package payroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const releaseColumns = `r.id, r.employee_id, e.name, r.shop_id, r.salary_month, r.base_salary, r.gross_salary,
    r.advance_deduction, r.bonus, r.loan_deduction, r.fine_amount, r.overtime_bonus, r.other_deduction,
    r.net_payable, COALESCE(r.loan_id::text, ''), r.status, r.released_at, COALESCE(r.released_by, ''),
    r.calculation_snapshot, r.created_at`

func (s *Store) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return s.DB.Begin(ctx)
}

func (s *Store) ReleaseExistsTx(ctx context.Context, tx pgx.Tx, employeeID, month string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
    SELECT EXISTS (SELECT 1 FROM payroll_releases WHERE employee_id::text = $1 AND salary_month = $2)
  `, employeeID, month).Scan(&exists)
	return exists, err
}

// InsertReleaseTx maps the (employee, month) unique violation to ErrAlreadyReleased.
func (s *Store) InsertReleaseTx(ctx context.Context, tx pgx.Tx, r Release) (Release, error) {
	var id string
	err := tx.QueryRow(ctx, `
    INSERT INTO payroll_releases (
      employee_id, shop_id, salary_month, base_salary, gross_salary, advance_deduction, bonus,
      loan_deduction, fine_amount, overtime_bonus, other_deduction, net_payable, loan_id, status,
      released_at, released_by, calculation_snapshot
    )
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
    RETURNING id
  `, r.EmployeeID, r.ShopID, r.SalaryMonth, r.BaseSalary, r.GrossSalary, r.AdvanceDeduction, r.Bonus,
		r.LoanDeduction, r.FineAmount, r.OvertimeBonus, r.OtherDeduction, r.NetPayable, nullIfEmpty(r.LoanID), r.Status,
		r.ReleasedAt, nullIfEmpty(r.ReleasedBy), r.Snapshot).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Release{}, ErrAlreadyReleased
		}
		return Release{}, err
	}
	return scanRelease(tx.QueryRow(ctx, `
    SELECT `+releaseColumns+`
    FROM payroll_releases r
    JOIN employees e ON e.id = r.employee_id
    WHERE r.id::text = $1
  `, id))
}

func (s *Store) GetRelease(ctx context.Context, releaseID string, shopIDs []string) (Release, error) {
	return scanRelease(s.DB.QueryRow(ctx, `
    SELECT `+releaseColumns+`
    FROM payroll_releases r
    JOIN employees e ON e.id = r.employee_id
    WHERE r.id::text = $1 AND r.shop_id::text = ANY($2::text[])
  `, releaseID, shopIDs))
}

func (s *Store) ListReleases(ctx context.Context, shopIDs []string, filter ReleaseFilter, limit, offset int) ([]Release, error) {
	query := `
    SELECT ` + releaseColumns + `
    FROM payroll_releases r
    JOIN employees e ON e.id = r.employee_id
    WHERE r.shop_id::text = ANY($1::text[])`
	args := []any{shopIDs}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND r.employee_id::text = $%d", len(args))
	}
	if filter.Month != "" {
		args = append(args, filter.Month)
		query += fmt.Sprintf(" AND r.salary_month = $%d", len(args))
	}
	query += fmt.Sprintf(" ORDER BY r.salary_month DESC, e.name LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Release
	for rows.Next() {
		r, err := scanRelease(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRelease(row pgx.Row) (Release, error) {
	var r Release
	err := row.Scan(&r.ID, &r.EmployeeID, &r.EmployeeName, &r.ShopID, &r.SalaryMonth, &r.BaseSalary, &r.GrossSalary,
		&r.AdvanceDeduction, &r.Bonus, &r.LoanDeduction, &r.FineAmount, &r.OvertimeBonus, &r.OtherDeduction,
		&r.NetPayable, &r.LoanID, &r.Status, &r.ReleasedAt, &r.ReleasedBy, &r.Snapshot, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Release{}, ErrReleaseNotFound
	}
	return r, err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
