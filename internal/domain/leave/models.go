package leave

import "time"

type Request struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	StartDate  time.Time  `json:"startDate"`
	EndDate    time.Time  `json:"endDate"`
	LeaveType  string     `json:"leaveType"`
	Status     string     `json:"status"`
	ApproverID string     `json:"approverId,omitempty"`
	Notes      string     `json:"notes"`
	Days       int        `json:"days"`
	DecidedAt  *time.Time `json:"decidedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type CreateRequest struct {
	EmployeeID string
	StartDate  time.Time
	EndDate    time.Time
	LeaveType  string
	Notes      string
}

type RequestFilter struct {
	EmployeeID string
	Status     string
}

type Holiday struct {
	ID          string    `json:"id"`
	ShopID      string    `json:"shopId"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type HolidayRequest struct {
	ShopID      string
	StartDate   time.Time
	EndDate     time.Time
	Description string
}
