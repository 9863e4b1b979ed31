package orders

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentStatus derives the status from what was paid. kitchenPending forces pending for
// kitchen-ticket flows that settle at the end of the meal.
func PaymentStatus(paid, total decimal.Decimal, kitchenPending bool) string {
	switch {
	case kitchenPending:
		return PaymentPending
	case paid.GreaterThanOrEqual(total):
		return PaymentCompleted
	case paid.IsPositive():
		return PaymentPartial
	default:
		return PaymentPending
	}
}

// PaymentMethod is mixed when more than one tender is used, the single tender when only one
// is, and otherwise the caller's choice defaulting to cash.
func PaymentMethod(cash, card, wallet decimal.Decimal, fallback string) (string, error) {
	used := make([]string, 0, 3)
	if !cash.IsZero() {
		used = append(used, MethodCash)
	}
	if !card.IsZero() {
		used = append(used, MethodCard)
	}
	if !wallet.IsZero() {
		used = append(used, MethodWallet)
	}
	switch len(used) {
	case 0:
	case 1:
		return used[0], nil
	default:
		return MethodMixed, nil
	}

	switch method := strings.ToLower(strings.TrimSpace(fallback)); method {
	case "":
		return MethodCash, nil
	case MethodCash, MethodCard, MethodWallet, MethodMixed:
		return method, nil
	default:
		return "", ErrInvalidPaymentInput
	}
}

func decimalInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
