package stock

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"shopledger/internal/domain/audit"
	"shopledger/internal/platform/querier/txtest"
)

type fakeStore struct {
	units     map[string]*Unit
	movements []Movement
	tx        *txtest.Tx
}

func newFakeStore(units ...Unit) *fakeStore {
	store := &fakeStore{units: map[string]*Unit{}}
	for i := range units {
		u := units[i]
		store.units[u.ProductID+"/"+u.VariantID] = &u
	}
	return store
}

func (f *fakeStore) BeginTx(ctx context.Context) (pgx.Tx, error) {
	f.tx = &txtest.Tx{}
	return f.tx, nil
}

func (f *fakeStore) LockUnitTx(ctx context.Context, tx pgx.Tx, shopIDs []string, productID, variantID string) (Unit, error) {
	u, ok := f.units[productID+"/"+variantID]
	if !ok {
		if variantID != "" {
			return Unit{}, ErrVariantNotFound
		}
		return Unit{}, ErrProductNotFound
	}
	for _, shop := range shopIDs {
		if shop == u.ShopID {
			return *u, nil
		}
	}
	return Unit{}, ErrProductNotFound
}

func (f *fakeStore) ApplyDeltaTx(ctx context.Context, tx pgx.Tx, unit Unit, delta int) (int, error) {
	u := f.units[unit.ProductID+"/"+unit.VariantID]
	if u.Quantity+delta < 0 {
		return 0, ErrInsufficientStock
	}
	u.Quantity += delta
	return u.Quantity, nil
}

func (f *fakeStore) InsertMovementTx(ctx context.Context, tx pgx.Tx, movement Movement) (Movement, error) {
	movement.ID = "m"
	f.movements = append(f.movements, movement)
	return movement, nil
}

func (f *fakeStore) ListMovements(ctx context.Context, shopIDs []string, filter MovementFilter, limit, offset int) ([]Movement, error) {
	return f.movements, nil
}

func (f *fakeStore) LowStock(ctx context.Context, shopID string) ([]Unit, error) {
	var out []Unit
	for _, u := range f.units {
		if u.ShopID == shopID && u.Low() {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeAuditor struct {
	entries []audit.Entry
}

func (f *fakeAuditor) RecordTx(ctx context.Context, tx pgx.Tx, entry audit.Entry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func TestDebitAndCreditKeepMovementIdentity(t *testing.T) {
	store := newFakeStore(Unit{ProductID: "p1", ShopID: "s1", Quantity: 10, Status: ProductStatusActive})
	ledger := NewLedger(store, nil)
	tx := &txtest.Tx{}
	unit := *store.units["p1/"]

	debit, err := ledger.DebitTx(context.Background(), tx, Change{Unit: unit, Quantity: 4, OrderID: "o1"})
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if debit.Type != MovementOrder || debit.Quantity != -4 || debit.PreviousStock != 10 || debit.NewStock != 6 || debit.OrderID != "o1" {
		t.Fatalf("unexpected debit movement %+v", debit)
	}

	credit, err := ledger.CreditTx(context.Background(), tx, Change{Unit: unit, Quantity: 3, OrderID: "o1"})
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if credit.Type != MovementReturn || credit.PreviousStock != 6 || credit.NewStock != 9 {
		t.Fatalf("unexpected credit movement %+v", credit)
	}
	for _, m := range store.movements {
		if m.NewStock != m.PreviousStock+m.Quantity {
			t.Fatalf("movement identity broken: %+v", m)
		}
	}
}

func TestDebitRefusesOversell(t *testing.T) {
	store := newFakeStore(Unit{ProductID: "p1", ShopID: "s1", Quantity: 3})
	ledger := NewLedger(store, nil)

	_, err := ledger.DebitTx(context.Background(), &txtest.Tx{}, Change{Unit: *store.units["p1/"], Quantity: 5})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if len(store.movements) != 0 {
		t.Fatalf("expected no movement, got %d", len(store.movements))
	}
}

func TestDebitRejectsNonPositiveQuantity(t *testing.T) {
	ledger := NewLedger(newFakeStore(), nil)
	if _, err := ledger.DebitTx(context.Background(), &txtest.Tx{}, Change{Quantity: 0}); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestAdjustCommitsAndAudits(t *testing.T) {
	store := newFakeStore(Unit{ProductID: "p1", VariantID: "v1", ShopID: "s1", Quantity: 2})
	auditor := &fakeAuditor{}
	ledger := NewLedger(store, auditor)

	movement, err := ledger.Adjust(context.Background(), AdjustRequest{ProductID: "p1", VariantID: "v1", Delta: 5, Note: "recount"}, []string{"s1"}, "u1")
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if movement.Type != MovementAdjustment || movement.NewStock != 7 || movement.CreatedBy != "u1" {
		t.Fatalf("unexpected movement %+v", movement)
	}
	if !store.tx.Committed {
		t.Fatal("expected commit")
	}
	if len(auditor.entries) != 1 || auditor.entries[0].EntityID != "v1" {
		t.Fatalf("unexpected audit entries %+v", auditor.entries)
	}
}

func TestAdjustRejectsNegativeResult(t *testing.T) {
	store := newFakeStore(Unit{ProductID: "p1", ShopID: "s1", Quantity: 2})
	ledger := NewLedger(store, nil)

	_, err := ledger.Adjust(context.Background(), AdjustRequest{ProductID: "p1", Delta: -3}, []string{"s1"}, "u1")
	if !errors.Is(err, ErrNegativeStock) {
		t.Fatalf("expected ErrNegativeStock, got %v", err)
	}
	if store.tx.Committed || !store.tx.RolledBack {
		t.Fatal("expected rollback without commit")
	}
	if store.units["p1/"].Quantity != 2 {
		t.Fatalf("quantity changed to %d", store.units["p1/"].Quantity)
	}
}

func TestAdjustOutsideAccessibleShops(t *testing.T) {
	store := newFakeStore(Unit{ProductID: "p1", ShopID: "s1", Quantity: 2})
	ledger := NewLedger(store, nil)

	_, err := ledger.Adjust(context.Background(), AdjustRequest{ProductID: "p1", Delta: 1}, []string{"s2"}, "u1")
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestUnitLow(t *testing.T) {
	if !(Unit{Quantity: 2, LowStockAlert: 2}).Low() {
		t.Fatal("quantity equal to threshold should be low")
	}
	if (Unit{Quantity: 3, LowStockAlert: 2}).Low() {
		t.Fatal("quantity above threshold should not be low")
	}
}
