package loans

const (
	StatusActive    = "ACTIVE"
	StatusCompleted = "COMPLETED"
)
