package loans

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestTotalPayable(t *testing.T) {
	if got := TotalPayable(dec("10000"), dec("0.05")); !got.Equal(dec("10500")) {
		t.Fatalf("expected 10500, got %s", got)
	}
	if got := TotalPayable(dec("999.99"), dec("0")); !got.Equal(dec("999.99")) {
		t.Fatalf("expected 999.99, got %s", got)
	}
}

func TestApplyPaymentBalanceMonotonic(t *testing.T) {
	loan := Loan{TotalPayable: dec("1050"), RemainingBalance: dec("1050"), Status: StatusActive}
	paid := decimal.Zero
	for _, amount := range []string{"300", "300", "300"} {
		var err error
		loan, err = ApplyPayment(loan, dec(amount))
		if err != nil {
			t.Fatalf("payment %s: %v", amount, err)
		}
		paid = paid.Add(dec(amount))
		if !loan.RemainingBalance.Equal(loan.TotalPayable.Sub(paid)) {
			t.Fatalf("expected remaining %s, got %s", loan.TotalPayable.Sub(paid), loan.RemainingBalance)
		}
	}

	before := loan
	if _, err := ApplyPayment(loan, dec("150.01")); !errors.Is(err, ErrPaymentExceedsBalance) {
		t.Fatalf("expected ErrPaymentExceedsBalance, got %v", err)
	}
	if !loan.RemainingBalance.Equal(before.RemainingBalance) {
		t.Fatalf("rejected payment must not change the balance")
	}

	loan, err := ApplyPayment(loan, dec("150"))
	if err != nil || !loan.RemainingBalance.IsZero() || loan.Status != StatusCompleted {
		t.Fatalf("expected completed loan, got %+v (%v)", loan, err)
	}
	if _, err := ApplyPayment(loan, dec("1")); !errors.Is(err, ErrLoanCompleted) {
		t.Fatalf("expected ErrLoanCompleted, got %v", err)
	}
}

func TestApplyPaymentRejectsNonPositive(t *testing.T) {
	loan := Loan{RemainingBalance: dec("100"), Status: StatusActive}
	for _, amount := range []string{"0", "-5"} {
		if _, err := ApplyPayment(loan, dec(amount)); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%s: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestAllocateAdvancesOldestFirst(t *testing.T) {
	advances := []Advance{
		{ID: "a1", Amount: dec("500"), DeductedAmount: dec("200")},
		{ID: "a2", Amount: dec("400")},
		{ID: "a3", Amount: dec("100")},
	}
	got, err := AllocateAdvances(advances, dec("450"))
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if len(got) != 2 || got[0].AdvanceID != "a1" || !got[0].Amount.Equal(dec("300")) || got[1].AdvanceID != "a2" || !got[1].Amount.Equal(dec("150")) {
		t.Fatalf("unexpected allocation %+v", got)
	}

	if _, err := AllocateAdvances(advances, dec("800.01")); !errors.Is(err, ErrAdvanceExceedsOutstanding) {
		t.Fatalf("expected ErrAdvanceExceedsOutstanding, got %v", err)
	}
	if got, err := AllocateAdvances(advances, decimal.Zero); err != nil || len(got) != 0 {
		t.Fatalf("expected empty allocation, got %+v (%v)", got, err)
	}
}
