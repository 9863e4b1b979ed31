package commission

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

func (s *Store) StaffExistsTx(ctx context.Context, tx pgx.Tx, staffID string, shopIDs []string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM employees
      WHERE id::text = $1 AND shop_id::text = ANY($2::text[]) AND status = 'active'
    )
  `, staffID, shopIDs).Scan(&exists)
	return exists, err
}

func (s *Store) ShopPercentageTx(ctx context.Context, tx pgx.Tx, shopID string) (decimal.Decimal, error) {
	var pct decimal.Decimal
	err := tx.QueryRow(ctx, "SELECT commission_percentage FROM shops WHERE id::text = $1", shopID).Scan(&pct)
	return pct, err
}

func (s *Store) InsertTx(ctx context.Context, tx pgx.Tx, c Commission) (Commission, error) {
	err := tx.QueryRow(ctx, `
    INSERT INTO commissions (shop_id, staff_id, order_id, base_amount, commission_amount, percentage, note)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id, created_at
  `, c.ShopID, c.StaffID, c.OrderID, c.BaseAmount, c.CommissionAmount, c.Percentage, c.Note).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return Commission{}, err
	}
	return c, nil
}

func (s *Store) ListForStaff(ctx context.Context, staffID string, shopIDs []string, limit, offset int) ([]Commission, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, shop_id, staff_id, order_id, base_amount, commission_amount, percentage, COALESCE(note, ''), created_at
    FROM commissions
    WHERE staff_id::text = $1 AND shop_id::text = ANY($2::text[])
    ORDER BY created_at DESC
    LIMIT $3 OFFSET $4
  `, staffID, shopIDs, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Commission
	for rows.Next() {
		var c Commission
		if err := rows.Scan(&c.ID, &c.ShopID, &c.StaffID, &c.OrderID, &c.BaseAmount, &c.CommissionAmount, &c.Percentage, &c.Note, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
