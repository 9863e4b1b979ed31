package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

func (s *Store) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return s.DB.Begin(ctx)
}

// LockUnitTx reads the product (and variant when given) with row locks held until tx ends,
// so a concurrent settlement against the same unit waits for this one to finish.
func (s *Store) LockUnitTx(ctx context.Context, tx pgx.Tx, shopIDs []string, productID, variantID string) (Unit, error) {
	var unit Unit
	err := tx.QueryRow(ctx, `
    SELECT id, shop_id, name, status, stock, low_stock_alert, purchase_price, vat_percent
    FROM products
    WHERE id::text = $1 AND shop_id::text = ANY($2::text[])
    FOR UPDATE
  `, productID, shopIDs).Scan(&unit.ProductID, &unit.ShopID, &unit.Name, &unit.Status, &unit.Quantity, &unit.LowStockAlert, &unit.PurchasePrice, &unit.VATPercent)
	if errors.Is(err, pgx.ErrNoRows) {
		return Unit{}, ErrProductNotFound
	}
	if err != nil {
		return Unit{}, err
	}
	if variantID == "" {
		return unit, nil
	}

	var name string
	var quantity, alert int
	var cost decimal.NullDecimal
	err = tx.QueryRow(ctx, `
    SELECT id, name, quantity, low_stock_alert, purchase_price
    FROM product_variants
    WHERE id::text = $1 AND product_id::text = $2
    FOR UPDATE
  `, variantID, productID).Scan(&unit.VariantID, &name, &quantity, &alert, &cost)
	if errors.Is(err, pgx.ErrNoRows) {
		return Unit{}, ErrVariantNotFound
	}
	if err != nil {
		return Unit{}, err
	}
	unit.Name = unit.Name + " / " + name
	unit.Quantity = quantity
	unit.LowStockAlert = alert
	if cost.Valid {
		unit.PurchasePrice = cost.Decimal
	}
	return unit, nil
}

// ApplyDeltaTx adds delta to the unit's quantity only if the result stays non-negative and
// returns the new quantity. A refused update surfaces as ErrInsufficientStock.
func (s *Store) ApplyDeltaTx(ctx context.Context, tx pgx.Tx, unit Unit, delta int) (int, error) {
	query := `
    UPDATE products SET stock = stock + $1, updated_at = now()
    WHERE id::text = $2 AND stock + $1 >= 0
    RETURNING stock
  `
	id := unit.ProductID
	if unit.IsVariant() {
		query = `
    UPDATE product_variants SET quantity = quantity + $1, updated_at = now()
    WHERE id::text = $2 AND quantity + $1 >= 0
    RETURNING quantity
  `
		id = unit.VariantID
	}

	var newStock int
	err := tx.QueryRow(ctx, query, delta, id).Scan(&newStock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrInsufficientStock
	}
	if err != nil {
		return 0, fmt.Errorf("apply stock delta: %w", err)
	}
	return newStock, nil
}

func (s *Store) InsertMovementTx(ctx context.Context, tx pgx.Tx, movement Movement) (Movement, error) {
	err := tx.QueryRow(ctx, `
    INSERT INTO stock_movements (shop_id, product_id, variant_id, type, quantity, previous_stock, new_stock, order_id, note, created_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING id, created_at
  `, movement.ShopID, movement.ProductID, nullIfEmpty(movement.VariantID), movement.Type, movement.Quantity,
		movement.PreviousStock, movement.NewStock, nullIfEmpty(movement.OrderID), nullIfEmpty(movement.Note), nullIfEmpty(movement.CreatedBy),
	).Scan(&movement.ID, &movement.CreatedAt)
	if err != nil {
		return Movement{}, err
	}
	return movement, nil
}

func (s *Store) ListMovements(ctx context.Context, shopIDs []string, filter MovementFilter, limit, offset int) ([]Movement, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, shop_id, product_id, COALESCE(variant_id::text, ''), type, quantity, previous_stock, new_stock,
           COALESCE(order_id::text, ''), COALESCE(note, ''), COALESCE(created_by, ''), created_at
    FROM stock_movements
    WHERE shop_id::text = ANY($1::text[])
      AND ($2 = '' OR product_id::text = $2)
      AND ($3 = '' OR variant_id::text = $3)
    ORDER BY created_at DESC, id
    LIMIT $4 OFFSET $5
  `, shopIDs, filter.ProductID, filter.VariantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.ShopID, &m.ProductID, &m.VariantID, &m.Type, &m.Quantity, &m.PreviousStock, &m.NewStock,
			&m.OrderID, &m.Note, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) LowStock(ctx context.Context, shopID string) ([]Unit, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT p.id, '' AS variant_id, p.shop_id, p.name, p.status, p.stock, p.low_stock_alert, p.purchase_price, p.vat_percent
    FROM products p
    WHERE p.shop_id::text = $1 AND p.status = 'active' AND p.stock <= p.low_stock_alert
      AND NOT EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = p.id)
    UNION ALL
    SELECT p.id, v.id::text, p.shop_id, p.name || ' / ' || v.name, p.status, v.quantity, v.low_stock_alert,
           COALESCE(v.purchase_price, p.purchase_price), p.vat_percent
    FROM product_variants v
    JOIN products p ON p.id = v.product_id
    WHERE p.shop_id::text = $1 AND p.status = 'active' AND v.quantity <= v.low_stock_alert
    ORDER BY 6, 4
  `, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Unit
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ProductID, &u.VariantID, &u.ShopID, &u.Name, &u.Status, &u.Quantity, &u.LowStockAlert, &u.PurchasePrice, &u.VATPercent); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
