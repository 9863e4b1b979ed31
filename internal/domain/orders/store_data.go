package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"shopledger/internal/domain/pricing"
	"shopledger/internal/platform/querier"
)

const orderColumns = `
    id, shop_id, order_number, customer_name, COALESCE(customer_phone, ''), COALESCE(customer_email, ''),
    subtotal, tax, discount, total, cash_amount, card_amount, wallet_amount, paid_amount,
    payment_method, payment_status, status, COALESCE(staff_id, ''), COALESCE(notes, ''), COALESCE(created_by, ''),
    created_at, updated_at`

var ErrDuplicateOrderNumber = errors.New("order number already used")

func (s *Store) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return s.DB.Begin(ctx)
}

func (s *Store) InsertOrderTx(ctx context.Context, tx pgx.Tx, o Order) (Order, error) {
	err := tx.QueryRow(ctx, `
    INSERT INTO orders (shop_id, order_number, customer_name, customer_phone, customer_email,
                        subtotal, tax, discount, total, cash_amount, card_amount, wallet_amount, paid_amount,
                        payment_method, payment_status, status, staff_id, notes, created_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
    RETURNING id, created_at, updated_at
  `, o.ShopID, o.OrderNumber, o.CustomerName, nullIfEmpty(o.CustomerPhone), nullIfEmpty(o.CustomerEmail),
		o.Subtotal, o.Tax, o.Discount, o.Total, o.CashAmount, o.CardAmount, o.WalletAmount, o.PaidAmount,
		o.PaymentMethod, o.PaymentStatus, o.Status, nullIfEmpty(o.StaffID), nullIfEmpty(o.Notes), nullIfEmpty(o.CreatedBy),
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_number_key" {
			return Order{}, ErrDuplicateOrderNumber
		}
		return Order{}, fmt.Errorf("insert order: %w", err)
	}
	return o, nil
}

func (s *Store) InsertLineTx(ctx context.Context, tx pgx.Tx, l Line) (Line, error) {
	err := tx.QueryRow(ctx, `
    INSERT INTO order_lines (order_id, line_no, product_id, variant_id, quantity, unit_price, original_unit_price,
                             discount_type, discount_amount, discount_per_unit, vat_percent, subtotal, purchase_price)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
    RETURNING id, created_at
  `, l.OrderID, l.LineNo, l.ProductID, nullIfEmpty(l.VariantID), l.Quantity, l.UnitPrice, l.OriginalUnitPrice,
		string(l.DiscountType), l.DiscountAmount, l.DiscountPerUnit, l.VATPercent, l.Subtotal, l.PurchasePrice,
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return Line{}, fmt.Errorf("insert order line: %w", err)
	}
	return l, nil
}

func (s *Store) LockOrderTx(ctx context.Context, tx pgx.Tx, orderID string, shopIDs []string) (Order, error) {
	o, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+`
    FROM orders
    WHERE id::text = $1 AND shop_id::text = ANY($2::text[])
    FOR UPDATE
  `, orderID, shopIDs))
	if err != nil {
		return Order{}, err
	}
	o.Lines, err = listLines(ctx, tx, o.ID)
	return o, err
}

func (s *Store) UpdateStatusTx(ctx context.Context, tx pgx.Tx, orderID, status string) (time.Time, error) {
	var updatedAt time.Time
	err := tx.QueryRow(ctx, `
    UPDATE orders SET status = $1, updated_at = now()
    WHERE id::text = $2
    RETURNING updated_at
  `, status, orderID).Scan(&updatedAt)
	return updatedAt, err
}

func (s *Store) Get(ctx context.Context, orderID string, shopIDs []string) (Order, error) {
	o, err := scanOrder(s.DB.QueryRow(ctx, `SELECT `+orderColumns+`
    FROM orders
    WHERE id::text = $1 AND shop_id::text = ANY($2::text[])
  `, orderID, shopIDs))
	if err != nil {
		return Order{}, err
	}
	o.Lines, err = listLines(ctx, s.DB, o.ID)
	return o, err
}

func (s *Store) List(ctx context.Context, shopIDs []string, filter ListFilter, limit, offset int) (ListResult, error) {
	where, args := listWhere(shopIDs, filter)

	var result ListResult
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM orders"+where, args...).Scan(&result.Total); err != nil {
		return ListResult{}, err
	}

	query := "SELECT " + orderColumns + " FROM orders" + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := s.DB.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return ListResult{}, err
	}
	defer rows.Close()

	result.Items = []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return ListResult{}, err
		}
		result.Items = append(result.Items, o)
	}
	return result, rows.Err()
}

func listWhere(shopIDs []string, filter ListFilter) (string, []any) {
	where := " WHERE shop_id::text = ANY($1::text[])"
	args := []any{shopIDs}
	if filter.ShopID != "" {
		args = append(args, filter.ShopID)
		where += fmt.Sprintf(" AND shop_id::text = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		where += fmt.Sprintf(" AND payment_status = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += fmt.Sprintf(" AND created_at < $%d", len(args))
	}
	return where, args
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.ShopID, &o.OrderNumber, &o.CustomerName, &o.CustomerPhone, &o.CustomerEmail,
		&o.Subtotal, &o.Tax, &o.Discount, &o.Total, &o.CashAmount, &o.CardAmount, &o.WalletAmount, &o.PaidAmount,
		&o.PaymentMethod, &o.PaymentStatus, &o.Status, &o.StaffID, &o.Notes, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	return o, err
}

func listLines(ctx context.Context, q querier.Querier, orderID string) ([]Line, error) {
	rows, err := q.Query(ctx, `
    SELECT id, order_id, line_no, product_id, COALESCE(variant_id::text, ''), quantity, unit_price, original_unit_price,
           discount_type, discount_amount, discount_per_unit, vat_percent, subtotal, purchase_price, created_at
    FROM order_lines
    WHERE order_id::text = $1
    ORDER BY line_no
  `, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var l Line
		var discountType string
		if err := rows.Scan(&l.ID, &l.OrderID, &l.LineNo, &l.ProductID, &l.VariantID, &l.Quantity, &l.UnitPrice, &l.OriginalUnitPrice,
			&discountType, &l.DiscountAmount, &l.DiscountPerUnit, &l.VATPercent, &l.Subtotal, &l.PurchasePrice, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.DiscountType = pricing.DiscountType(discountType)
		out = append(out, l)
	}
	return out, rows.Err()
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
