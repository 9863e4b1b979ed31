package reports

import "errors"

var (
	ErrInvalidShop    = errors.New("shop not accessible")
	ErrJobRunNotFound  = errors.New("job run not found")
)
