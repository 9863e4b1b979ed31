package salary

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type StoreAPI interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	ListTx(ctx context.Context, tx pgx.Tx, employeeID string) ([]Entry, error)
	InsertTx(ctx context.Context, tx pgx.Tx, entry Entry) (Entry, error)
	LatestReleasedMonthTx(ctx context.Context, tx pgx.Tx, employeeID string) (string, error)
	List(ctx context.Context, employeeID string) ([]Entry, error)
}
