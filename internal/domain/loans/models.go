package loans

import (
	"time"

	"github.com/shopspring/decimal"
)

type Loan struct {
	ID               string          `json:"id"`
	EmployeeID       string          `json:"employeeId"`
	ShopID           string          `json:"shopId"`
	Principal        decimal.Decimal `json:"principal"`
	InterestRate     decimal.Decimal `json:"interestRate"`
	TotalPayable     decimal.Decimal `json:"totalPayable"`
	MonthlyEMI       decimal.Decimal `json:"monthlyEmi"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	Status           string          `json:"status"`
	Notes            string          `json:"notes"`
	CreatedBy        string          `json:"createdBy,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	Payments         []Payment       `json:"payments,omitempty"`
}

type Payment struct {
	ID               string          `json:"id"`
	LoanID           string          `json:"loanId"`
	Amount           decimal.Decimal `json:"amount"`
	PaidOn           time.Time       `json:"paidOn"`
	RecordedBy       string          `json:"recordedBy,omitempty"`
	PayrollReleaseID string          `json:"payrollReleaseId,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

type Advance struct {
	ID             string          `json:"id"`
	EmployeeID     string          `json:"employeeId"`
	Amount         decimal.Decimal `json:"amount"`
	DeductedAmount decimal.Decimal `json:"deductedAmount"`
	GivenOn        time.Time       `json:"givenOn"`
	Notes          string          `json:"notes"`
	CreatedBy      string          `json:"createdBy,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func (a Advance) Outstanding() decimal.Decimal {
	return a.Amount.Sub(a.DeductedAmount)
}

type CreateLoanRequest struct {
	EmployeeID   string
	Principal    decimal.Decimal
	InterestRate decimal.Decimal
	MonthlyEMI   decimal.Decimal
	Notes        string
}

type PaymentRequest struct {
	LoanID string
	Amount decimal.Decimal
	PaidOn time.Time
}

type CreateAdvanceRequest struct {
	EmployeeID string
	Amount     decimal.Decimal
	GivenOn    time.Time
	Notes      string
}

type LoanFilter struct {
	EmployeeID string
	Status     string
}

// Allocation is the share of a deduction taken from one advance.
type Allocation struct {
	AdvanceID string
	Amount    decimal.Decimal
}
