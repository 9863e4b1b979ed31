package salary

import (
	"context"

	"github.com/jackc/pgx/v5"

	"shopledger/internal/platform/querier"
)

const entryColumns = "id, employee_id, amount, start_date, status, previous_salary, COALESCE(created_by, ''), created_at"

func (s *Store) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return s.DB.Begin(ctx)
}

func (s *Store) ListTx(ctx context.Context, tx pgx.Tx, employeeID string) ([]Entry, error) {
	return list(ctx, tx, employeeID)
}

func (s *Store) List(ctx context.Context, employeeID string) ([]Entry, error) {
	return list(ctx, s.DB, employeeID)
}

func (s *Store) InsertTx(ctx context.Context, tx pgx.Tx, e Entry) (Entry, error) {
	var out Entry
	err := tx.QueryRow(ctx, `
    INSERT INTO salary_history (employee_id, amount, start_date, status, previous_salary, created_by)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING `+entryColumns, e.EmployeeID, e.Amount, e.StartDate, e.Status, e.PreviousSalary, nullIfEmpty(e.CreatedBy)).
		Scan(&out.ID, &out.EmployeeID, &out.Amount, &out.StartDate, &out.Status, &out.PreviousSalary, &out.CreatedBy, &out.CreatedAt)
	return out, err
}

// LatestReleasedMonthTx returns the latest released "YYYY-MM" for the employee, or "" when none.
func (s *Store) LatestReleasedMonthTx(ctx context.Context, tx pgx.Tx, employeeID string) (string, error) {
	var month string
	err := tx.QueryRow(ctx, `
    SELECT COALESCE(MAX(salary_month), '')
    FROM payroll_releases
    WHERE employee_id::text = $1
  `, employeeID).Scan(&month)
	return month, err
}

func list(ctx context.Context, q querier.Querier, employeeID string) ([]Entry, error) {
	rows, err := q.Query(ctx, `
    SELECT `+entryColumns+`
    FROM salary_history
    WHERE employee_id::text = $1
    ORDER BY start_date, created_at
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.Amount, &e.StartDate, &e.Status, &e.PreviousSalary, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
