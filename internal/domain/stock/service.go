package stock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"shopledger/internal/domain/audit"
)

type Auditor interface {
	RecordTx(ctx context.Context, tx pgx.Tx, entry audit.Entry) error
}

// Ledger is the only writer of unit quantities. Every change appends exactly one movement
// whose newStock equals previousStock plus the signed quantity.
type Ledger struct {
	store StoreAPI
	audit Auditor
}

func NewLedger(store StoreAPI, auditor Auditor) *Ledger {
	return &Ledger{store: store, audit: auditor}
}

// LockTx returns the unit with its row locked for the rest of tx.
func (l *Ledger) LockTx(ctx context.Context, tx pgx.Tx, shopIDs []string, productID, variantID string) (Unit, error) {
	return l.store.LockUnitTx(ctx, tx, shopIDs, productID, variantID)
}

// DebitTx removes c.Quantity for an order and links the movement to c.OrderID.
func (l *Ledger) DebitTx(ctx context.Context, tx pgx.Tx, c Change) (Movement, error) {
	if c.Quantity <= 0 {
		return Movement{}, ErrInvalidQuantity
	}
	return l.apply(ctx, tx, c.Unit, MovementOrder, -c.Quantity, c.OrderID, c.Note, c.ActorID)
}

// CreditTx puts c.Quantity back, e.g. when an order is cancelled.
func (l *Ledger) CreditTx(ctx context.Context, tx pgx.Tx, c Change) (Movement, error) {
	if c.Quantity <= 0 {
		return Movement{}, ErrInvalidQuantity
	}
	return l.apply(ctx, tx, c.Unit, MovementReturn, c.Quantity, c.OrderID, c.Note, c.ActorID)
}

func (l *Ledger) apply(ctx context.Context, tx pgx.Tx, unit Unit, movementType string, delta int, orderID, note, actorID string) (Movement, error) {
	newStock, err := l.store.ApplyDeltaTx(ctx, tx, unit, delta)
	if err != nil {
		return Movement{}, err
	}
	return l.store.InsertMovementTx(ctx, tx, Movement{
		ShopID:        unit.ShopID,
		ProductID:     unit.ProductID,
		VariantID:     unit.VariantID,
		Type:          movementType,
		Quantity:      delta,
		PreviousStock: newStock - delta,
		NewStock:      newStock,
		OrderID:       orderID,
		Note:          note,
		CreatedBy:     actorID,
	})
}

// Adjust applies a manual signed correction in its own transaction.
func (l *Ledger) Adjust(ctx context.Context, req AdjustRequest, shopIDs []string, actorID string) (Movement, error) {
	if req.Delta == 0 {
		return Movement{}, ErrInvalidQuantity
	}

	tx, err := l.store.BeginTx(ctx)
	if err != nil {
		return Movement{}, err
	}
	defer rollback(ctx, tx)

	unit, err := l.store.LockUnitTx(ctx, tx, shopIDs, req.ProductID, req.VariantID)
	if err != nil {
		return Movement{}, err
	}
	if unit.Quantity+req.Delta < 0 {
		return Movement{}, ErrNegativeStock
	}

	movement, err := l.apply(ctx, tx, unit, MovementAdjustment, req.Delta, "", req.Note, actorID)
	if err != nil {
		return Movement{}, err
	}
	if l.audit != nil {
		if err := l.audit.RecordTx(ctx, tx, audit.Entry{
			ShopID:     unit.ShopID,
			ActorID:    actorID,
			Action:     audit.ActionStockAdjust,
			EntityType: audit.EntityStockUnit,
			EntityID:   unitKey(unit),
			Before:     map[string]int{"quantity": movement.PreviousStock},
			After:      map[string]int{"quantity": movement.NewStock},
		}); err != nil {
			return Movement{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Movement{}, fmt.Errorf("commit stock adjustment: %w", err)
	}
	return movement, nil
}

func (l *Ledger) ListMovements(ctx context.Context, shopIDs []string, filter MovementFilter, limit, offset int) ([]Movement, error) {
	return l.store.ListMovements(ctx, shopIDs, filter, limit, offset)
}

func (l *Ledger) LowStock(ctx context.Context, shopID string) ([]Unit, error) {
	return l.store.LowStock(ctx, shopID)
}

func unitKey(unit Unit) string {
	if unit.IsVariant() {
		return unit.VariantID
	}
	return unit.ProductID
}

// rollback is a no-op after a successful commit.
func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Warn("stock rollback failed", "err", err)
	}
}
