package payroll

const (
	StatusPending  = "PENDING"
	StatusReleased = "RELEASED"
)

// Day kinds, in classification order.
const (
	DayHoliday    = "holiday"
	DayWeekend    = "weekend"
	DayLeave      = "leave"
	DayPresent    = "present"
	DayHalf       = "half_day"
	DayAbsent     = "absent"
	DayUnrecorded = "unrecorded"
)
