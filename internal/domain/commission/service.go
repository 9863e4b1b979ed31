package commission

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"shopledger/internal/platform/money"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

// Compute returns total * pct / 100 rounded to cents, and false when nothing is owed.
func Compute(total, pct decimal.Decimal) (decimal.Decimal, bool) {
	if !pct.IsPositive() {
		return money.Zero, false
	}
	amount := money.Round(money.Percent(total, pct))
	if !amount.IsPositive() {
		return money.Zero, false
	}
	return amount, true
}

// RecordFromOrderTx books the commission inside the caller's transaction. A nil result
// with a nil error means the shop pays no commission on this order.
func (s *Service) RecordFromOrderTx(ctx context.Context, tx pgx.Tx, in Input) (*Commission, error) {
	ok, err := s.store.StaffExistsTx(ctx, tx, in.StaffID, in.ShopIDs)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrStaffNotFound
	}

	pct, err := s.store.ShopPercentageTx(ctx, tx, in.ShopID)
	if err != nil {
		return nil, fmt.Errorf("commission percentage: %w", err)
	}
	amount, owed := Compute(in.Total, pct)
	if !owed {
		return nil, nil
	}

	c, err := s.store.InsertTx(ctx, tx, Commission{
		ShopID:           in.ShopID,
		StaffID:          in.StaffID,
		OrderID:          in.OrderID,
		BaseAmount:       in.Total,
		CommissionAmount: amount,
		Percentage:       pct,
		Note:             fmt.Sprintf("%s%% of order %s", pct.String(), in.OrderNumber),
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) ListForStaff(ctx context.Context, staffID string, shopIDs []string, limit, offset int) ([]Commission, error) {
	return s.store.ListForStaff(ctx, staffID, shopIDs, limit, offset)
}
