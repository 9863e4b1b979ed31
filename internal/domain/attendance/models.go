package attendance

import "time"

type Record struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	WorkDate     time.Time `json:"workDate"`
	LateMinutes  int       `json:"lateMinutes"`
	ExtraMinutes int       `json:"extraMinutes"`
	IsHalfDay    bool      `json:"isHalfDay"`
	IsFullAbsent bool      `json:"isFullAbsent"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Patch carries an admin correction; nil fields are left unchanged.
type Patch struct {
	LateMinutes  *int    `json:"lateMinutes"`
	ExtraMinutes *int    `json:"extraMinutes"`
	IsHalfDay    *bool   `json:"isHalfDay"`
	IsFullAbsent *bool   `json:"isFullAbsent"`
	Notes        *string `json:"notes"`
}

func (p Patch) Apply(r Record) Record {
	if p.LateMinutes != nil {
		r.LateMinutes = *p.LateMinutes
	}
	if p.ExtraMinutes != nil {
		r.ExtraMinutes = *p.ExtraMinutes
	}
	if p.IsHalfDay != nil {
		r.IsHalfDay = *p.IsHalfDay
	}
	if p.IsFullAbsent != nil {
		r.IsFullAbsent = *p.IsFullAbsent
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	return r
}
