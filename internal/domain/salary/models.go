package salary

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusInitial   = "initial"
	StatusPromotion = "promotion"
	StatusDemotion  = "demotion"
)

type Entry struct {
	ID             string              `json:"id"`
	EmployeeID     string              `json:"employeeId"`
	Amount         decimal.Decimal     `json:"amount"`
	StartDate      time.Time           `json:"startDate"`
	Status         string              `json:"status"`
	PreviousSalary decimal.NullDecimal `json:"previousSalary"`
	CreatedBy      string              `json:"createdBy,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
}

type AppendRequest struct {
	EmployeeID string
	Amount     decimal.Decimal
	StartDate  time.Time
}
