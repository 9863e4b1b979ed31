package stock

const (
	MovementOrder      = "order"
	MovementAdjustment = "adjustment"
	MovementReturn     = "return"

	ProductStatusActive = "active"
)
