package payroll

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type StoreAPI interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	ReleaseExistsTx(ctx context.Context, tx pgx.Tx, employeeID, month string) (bool, error)
	InsertReleaseTx(ctx context.Context, tx pgx.Tx, release Release) (Release, error)
	GetRelease(ctx context.Context, releaseID string, shopIDs []string) (Release, error)
	ListReleases(ctx context.Context, shopIDs []string, filter ReleaseFilter, limit, offset int) ([]Release, error)
}
