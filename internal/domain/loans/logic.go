package loans

import (
	"github.com/shopspring/decimal"

	"shopledger/internal/platform/money"
)

// TotalPayable is principal * (1 + rate), where rate is a fraction.
func TotalPayable(principal, rate decimal.Decimal) decimal.Decimal {
	return money.Round(principal.Mul(decimal.NewFromInt(1).Add(rate)))
}

// ApplyPayment debits amount from the loan's remaining balance. The loan completes when the
// balance reaches exactly zero; a payment that would overshoot is rejected.
func ApplyPayment(loan Loan, amount decimal.Decimal) (Loan, error) {
	amount = money.Round(amount)
	if !amount.IsPositive() {
		return loan, ErrInvalidAmount
	}
	if loan.Status == StatusCompleted {
		return loan, ErrLoanCompleted
	}
	if amount.GreaterThan(loan.RemainingBalance) {
		return loan, ErrPaymentExceedsBalance
	}
	loan.RemainingBalance = loan.RemainingBalance.Sub(amount)
	if loan.RemainingBalance.IsZero() {
		loan.Status = StatusCompleted
	}
	return loan, nil
}

// AllocateAdvances spreads amount over advances in the given order, oldest first.
func AllocateAdvances(advances []Advance, amount decimal.Decimal) ([]Allocation, error) {
	if amount.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if amount.GreaterThan(TotalOutstanding(advances)) {
		return nil, ErrAdvanceExceedsOutstanding
	}
	var out []Allocation
	remaining := amount
	for _, adv := range advances {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(adv.Outstanding(), remaining)
		if !take.IsPositive() {
			continue
		}
		out = append(out, Allocation{AdvanceID: adv.ID, Amount: take})
		remaining = remaining.Sub(take)
	}
	return out, nil
}

func TotalOutstanding(advances []Advance) decimal.Decimal {
	total := money.Zero
	for _, adv := range advances {
		total = total.Add(adv.Outstanding())
	}
	return total
}
