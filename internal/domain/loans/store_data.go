package loans

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"shopledger/internal/platform/querier"
)

const loanColumns = "l.id, l.employee_id, e.shop_id, l.principal, l.interest_rate, l.total_payable, l.monthly_emi, l.remaining_balance, l.status, l.notes, COALESCE(l.created_by, ''), l.created_at, l.updated_at"

const advanceColumns = "id, employee_id, amount, deducted_amount, given_on, notes, COALESCE(created_by, ''), created_at"

func (s *Store) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return s.DB.Begin(ctx)
}

func (s *Store) InsertLoanTx(ctx context.Context, tx pgx.Tx, loan Loan) (Loan, error) {
	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO employee_loans (employee_id, principal, interest_rate, total_payable, monthly_emi, remaining_balance, status, notes, created_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    RETURNING id
  `, loan.EmployeeID, loan.Principal, loan.InterestRate, loan.TotalPayable, loan.MonthlyEMI, loan.RemainingBalance, loan.Status, loan.Notes, nullIfEmpty(loan.CreatedBy)).Scan(&id); err != nil {
		return Loan{}, err
	}
	return s.loan(ctx, tx, id, nil, "")
}

func (s *Store) LockLoanTx(ctx context.Context, tx pgx.Tx, loanID string, shopIDs []string) (Loan, error) {
	return s.loan(ctx, tx, loanID, shopIDs, " FOR UPDATE OF l")
}

func (s *Store) GetLoan(ctx context.Context, loanID string, shopIDs []string) (Loan, error) {
	return s.loan(ctx, s.DB, loanID, shopIDs, "")
}

// loan reads one loan; nil shopIDs skips shop scoping.
func (s *Store) loan(ctx context.Context, q querier.Querier, loanID string, shopIDs []string, suffix string) (Loan, error) {
	query := `
    SELECT ` + loanColumns + `
    FROM employee_loans l
    JOIN employees e ON e.id = l.employee_id
    WHERE l.id::text = $1`
	args := []any{loanID}
	if shopIDs != nil {
		query += " AND e.shop_id::text = ANY($2::text[])"
		args = append(args, shopIDs)
	}
	return scanLoan(q.QueryRow(ctx, query+suffix, args...))
}

func (s *Store) UpdateBalanceTx(ctx context.Context, tx pgx.Tx, loan Loan) error {
	_, err := tx.Exec(ctx, `
    UPDATE employee_loans
    SET remaining_balance = $1, status = $2, updated_at = now()
    WHERE id::text = $3
  `, loan.RemainingBalance, loan.Status, loan.ID)
	return err
}

func (s *Store) InsertPaymentTx(ctx context.Context, tx pgx.Tx, p Payment) (Payment, error) {
	var out Payment
	err := tx.QueryRow(ctx, `
    INSERT INTO loan_payments (loan_id, amount, paid_on, recorded_by, payroll_release_id)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id, loan_id, amount, paid_on, COALESCE(recorded_by, ''), COALESCE(payroll_release_id::text, ''), created_at
  `, p.LoanID, p.Amount, p.PaidOn, nullIfEmpty(p.RecordedBy), nullIfEmpty(p.PayrollReleaseID)).
		Scan(&out.ID, &out.LoanID, &out.Amount, &out.PaidOn, &out.RecordedBy, &out.PayrollReleaseID, &out.CreatedAt)
	return out, err
}

func (s *Store) ListPayments(ctx context.Context, loanID string) ([]Payment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, loan_id, amount, paid_on, COALESCE(recorded_by, ''), COALESCE(payroll_release_id::text, ''), created_at
    FROM loan_payments
    WHERE loan_id::text = $1
    ORDER BY paid_on, created_at
  `, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.LoanID, &p.Amount, &p.PaidOn, &p.RecordedBy, &p.PayrollReleaseID, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ListLoans(ctx context.Context, shopIDs []string, filter LoanFilter) ([]Loan, error) {
	query := `
    SELECT ` + loanColumns + `
    FROM employee_loans l
    JOIN employees e ON e.id = l.employee_id
    WHERE e.shop_id::text = ANY($1::text[])`
	args := []any{shopIDs}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND l.employee_id::text = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND l.status = $%d", len(args))
	}
	query += " ORDER BY l.created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, loan)
	}
	return out, rows.Err()
}

func scanLoan(row pgx.Row) (Loan, error) {
	var l Loan
	err := row.Scan(&l.ID, &l.EmployeeID, &l.ShopID, &l.Principal, &l.InterestRate, &l.TotalPayable, &l.MonthlyEMI, &l.RemainingBalance, &l.Status, &l.Notes, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Loan{}, ErrLoanNotFound
	}
	return l, err
}

func (s *Store) InsertAdvanceTx(ctx context.Context, tx pgx.Tx, a Advance) (Advance, error) {
	return scanAdvance(tx.QueryRow(ctx, `
    INSERT INTO employee_advances (employee_id, amount, given_on, notes, created_by)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING `+advanceColumns, a.EmployeeID, a.Amount, a.GivenOn, a.Notes, nullIfEmpty(a.CreatedBy)))
}

// LockOpenAdvancesTx returns advances with an undeducted remainder, oldest first.
func (s *Store) LockOpenAdvancesTx(ctx context.Context, tx pgx.Tx, employeeID string) ([]Advance, error) {
	rows, err := tx.Query(ctx, `
    SELECT `+advanceColumns+`
    FROM employee_advances
    WHERE employee_id::text = $1 AND deducted_amount < amount
    ORDER BY given_on, created_at
    FOR UPDATE
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Advance
	for rows.Next() {
		a, err := scanAdvance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) DeductAdvanceTx(ctx context.Context, tx pgx.Tx, advanceID string, amount decimal.Decimal) error {
	tag, err := tx.Exec(ctx, `
    UPDATE employee_advances
    SET deducted_amount = deducted_amount + $1
    WHERE id::text = $2 AND deducted_amount + $1 <= amount
  `, amount, advanceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrAdvanceExceedsOutstanding
	}
	return nil
}

func (s *Store) OutstandingAdvance(ctx context.Context, employeeID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(amount - deducted_amount), 0)
    FROM employee_advances
    WHERE employee_id::text = $1
  `, employeeID).Scan(&total)
	return total, err
}

func scanAdvance(row pgx.Row) (Advance, error) {
	var a Advance
	err := row.Scan(&a.ID, &a.EmployeeID, &a.Amount, &a.DeductedAmount, &a.GivenOn, &a.Notes, &a.CreatedBy, &a.CreatedAt)
	return a, err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
