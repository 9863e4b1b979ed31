package commission

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type StoreAPI interface {
	StaffExistsTx(ctx context.Context, tx pgx.Tx, staffID string, shopIDs []string) (bool, error)
	ShopPercentageTx(ctx context.Context, tx pgx.Tx, shopID string) (decimal.Decimal, error)
	InsertTx(ctx context.Context, tx pgx.Tx, c Commission) (Commission, error)
	ListForStaff(ctx context.Context, staffID string, shopIDs []string, limit, offset int) ([]Commission, error)
}
