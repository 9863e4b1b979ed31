package loans

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type StoreAPI interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)

	InsertLoanTx(ctx context.Context, tx pgx.Tx, loan Loan) (Loan, error)
	LockLoanTx(ctx context.Context, tx pgx.Tx, loanID string, shopIDs []string) (Loan, error)
	UpdateBalanceTx(ctx context.Context, tx pgx.Tx, loan Loan) error
	InsertPaymentTx(ctx context.Context, tx pgx.Tx, payment Payment) (Payment, error)
	GetLoan(ctx context.Context, loanID string, shopIDs []string) (Loan, error)
	ListPayments(ctx context.Context, loanID string) ([]Payment, error)
	ListLoans(ctx context.Context, shopIDs []string, filter LoanFilter) ([]Loan, error)

	InsertAdvanceTx(ctx context.Context, tx pgx.Tx, advance Advance) (Advance, error)
	LockOpenAdvancesTx(ctx context.Context, tx pgx.Tx, employeeID string) ([]Advance, error)
	DeductAdvanceTx(ctx context.Context, tx pgx.Tx, advanceID string, amount decimal.Decimal) error
	OutstandingAdvance(ctx context.Context, employeeID string) (decimal.Decimal, error)
}
