package orders

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// NewOrderNumber returns ORD-<epochMillis>-<3 digits>. There is no retry on collision; the
// UNIQUE constraint on orders.order_number rejects a duplicate and the order rolls back.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%03d", now.UnixMilli(), rand.IntN(1000))
}
