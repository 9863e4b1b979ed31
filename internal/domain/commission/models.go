package commission

import (
	"time"

	"github.com/shopspring/decimal"
)

type Commission struct {
	ID               string          `json:"id"`
	ShopID           string          `json:"shopId"`
	StaffID          string          `json:"staffId"`
	OrderID          string          `json:"orderId"`
	BaseAmount       decimal.Decimal `json:"baseAmount"`
	CommissionAmount decimal.Decimal `json:"commissionAmount"`
	Percentage       decimal.Decimal `json:"percentage"`
	Note             string          `json:"note,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// Input is the slice of a settled order the commission is computed from.
type Input struct {
	OrderID     string
	OrderNumber string
	ShopID      string
	Total       decimal.Decimal
	StaffID     string
	ShopIDs     []string
}
