package attendance

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

type StoreAPI interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	TouchTx(ctx context.Context, tx pgx.Tx, employeeID string, day time.Time) (Record, error)
	LockDayTx(ctx context.Context, tx pgx.Tx, employeeID string, day time.Time) (Record, error)
	UpsertTx(ctx context.Context, tx pgx.Tx, record Record) (Record, error)
	DeleteTx(ctx context.Context, tx pgx.Tx, employeeID string, day time.Time) (bool, error)
	MonthReleasedTx(ctx context.Context, tx pgx.Tx, employeeID, month string) (bool, error)
	Between(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error)
}
