package notifications

const (
	TypeLowStock        = "low_stock"
	TypePayrollReleased = "payroll_released"
)
