package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesSummary aggregates the orders created in a window. Cancelled orders are counted
// separately and excluded from the money totals.
type SalesSummary struct {
	Orders          int             `json:"orders"`
	CancelledOrders int             `json:"cancelledOrders"`
	Revenue         decimal.Decimal `json:"revenue"`
	Collected       decimal.Decimal `json:"collected"`
	Outstanding     decimal.Decimal `json:"outstanding"`
	Tax             decimal.Decimal `json:"tax"`
	Discount        decimal.Decimal `json:"discount"`
}

type Dashboard struct {
	ShopID          string          `json:"shopId"`
	From            time.Time       `json:"from"`
	To              time.Time       `json:"to"`
	Sales           SalesSummary    `json:"sales"`
	Commission      decimal.Decimal `json:"commission"`
	PayrollReleased decimal.Decimal `json:"payrollReleased"`
	LoanOutstanding decimal.Decimal `json:"loanOutstanding"`
	AdvanceOpen     decimal.Decimal `json:"advanceOpen"`
	PendingLeave    int             `json:"pendingLeave"`
	LowStockUnits   int             `json:"lowStockUnits"`
}

type JobRun struct {
	ID          string         `json:"id"`
	ShopID      string         `json:"shopId,omitempty"`
	JobType     string         `json:"jobType"`
	Status      string         `json:"status"`
	Details     map[string]any `json:"details"`
	CreatedAt   time.Time      `json:"createdAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

type JobRunFilter struct {
	ShopID  string
	JobType string
	Status  string
}

type JobRunPage struct {
	Items []JobRun `json:"items"`
	Total int      `json:"total"`
}
