package stock

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type StoreAPI interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	LockUnitTx(ctx context.Context, tx pgx.Tx, shopIDs []string, productID, variantID string) (Unit, error)
	ApplyDeltaTx(ctx context.Context, tx pgx.Tx, unit Unit, delta int) (int, error)
	InsertMovementTx(ctx context.Context, tx pgx.Tx, movement Movement) (Movement, error)
	ListMovements(ctx context.Context, shopIDs []string, filter MovementFilter, limit, offset int) ([]Movement, error)
	LowStock(ctx context.Context, shopID string) ([]Unit, error)
}
