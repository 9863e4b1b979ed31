package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

const recordColumns = "id, employee_id, work_date, late_minutes, extra_minutes, is_half_day, is_full_absent, notes, created_at, updated_at"

func (s *Store) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return s.DB.Begin(ctx)
}

// TouchTx returns the day's record, creating an empty one first if none exists.
func (s *Store) TouchTx(ctx context.Context, tx pgx.Tx, employeeID string, day time.Time) (Record, error) {
	return scanRecord(tx.QueryRow(ctx, `
    INSERT INTO attendance_records (employee_id, work_date)
    VALUES ($1, $2)
    ON CONFLICT (employee_id, work_date) DO UPDATE SET updated_at = attendance_records.updated_at
    RETURNING `+recordColumns, employeeID, day))
}

func (s *Store) LockDayTx(ctx context.Context, tx pgx.Tx, employeeID string, day time.Time) (Record, error) {
	return scanRecord(tx.QueryRow(ctx, `
    SELECT `+recordColumns+`
    FROM attendance_records
    WHERE employee_id::text = $1 AND work_date = $2
    FOR UPDATE
  `, employeeID, day))
}

func (s *Store) UpsertTx(ctx context.Context, tx pgx.Tx, r Record) (Record, error) {
	return scanRecord(tx.QueryRow(ctx, `
    INSERT INTO attendance_records (employee_id, work_date, late_minutes, extra_minutes, is_half_day, is_full_absent, notes)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    ON CONFLICT (employee_id, work_date) DO UPDATE
      SET late_minutes = EXCLUDED.late_minutes,
          extra_minutes = EXCLUDED.extra_minutes,
          is_half_day = EXCLUDED.is_half_day,
          is_full_absent = EXCLUDED.is_full_absent,
          notes = EXCLUDED.notes,
          updated_at = now()
    RETURNING `+recordColumns, r.EmployeeID, r.WorkDate, r.LateMinutes, r.ExtraMinutes, r.IsHalfDay, r.IsFullAbsent, r.Notes))
}

func (s *Store) DeleteTx(ctx context.Context, tx pgx.Tx, employeeID string, day time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, "DELETE FROM attendance_records WHERE employee_id::text = $1 AND work_date = $2", employeeID, day)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) MonthReleasedTx(ctx context.Context, tx pgx.Tx, employeeID, month string) (bool, error) {
	var released bool
	err := tx.QueryRow(ctx, `
    SELECT EXISTS (SELECT 1 FROM payroll_releases WHERE employee_id::text = $1 AND salary_month = $2)
  `, employeeID, month).Scan(&released)
	return released, err
}

func (s *Store) Between(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+recordColumns+`
    FROM attendance_records
    WHERE employee_id::text = $1 AND work_date BETWEEN $2 AND $3
    ORDER BY work_date
  `, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.EmployeeID, &r.WorkDate, &r.LateMinutes, &r.ExtraMinutes, &r.IsHalfDay, &r.IsFullAbsent, &r.Notes, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	return r, err
}
