package orders

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

type StoreAPI interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	InsertOrderTx(ctx context.Context, tx pgx.Tx, order Order) (Order, error)
	InsertLineTx(ctx context.Context, tx pgx.Tx, line Line) (Line, error)
	LockOrderTx(ctx context.Context, tx pgx.Tx, orderID string, shopIDs []string) (Order, error)
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, orderID, status string) (time.Time, error)
	Get(ctx context.Context, orderID string, shopIDs []string) (Order, error)
	List(ctx context.Context, shopIDs []string, filter ListFilter, limit, offset int) (ListResult, error)
}
