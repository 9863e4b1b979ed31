package metrics

import (
	"sync/atomic"
	"time"
)

// Collector counts HTTP traffic and settlement outcomes. The zero value is ready to use.
type Collector struct {
	totalRequests    uint64
	errorRequests    uint64
	clientErrors     uint64
	totalDurationMs  uint64
	ordersSettled    uint64
	ordersRejected   uint64
	commissionFailed uint64
	jobsFailed       uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	switch {
	case status >= 500:
		atomic.AddUint64(&c.errorRequests, 1)
	case status >= 400:
		atomic.AddUint64(&c.clientErrors, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) OrderSettled() {
	atomic.AddUint64(&c.ordersSettled, 1)
}

func (c *Collector) OrderRejected() {
	atomic.AddUint64(&c.ordersRejected, 1)
}

func (c *Collector) CommissionFailed() {
	atomic.AddUint64(&c.commissionFailed, 1)
}

func (c *Collector) JobFailed() {
	atomic.AddUint64(&c.jobsFailed, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":         total,
		"errorsTotal":           atomic.LoadUint64(&c.errorRequests),
		"clientErrorsTotal":     atomic.LoadUint64(&c.clientErrors),
		"avgDurationMs":         avg,
		"totalDurationMs":       totalMs,
		"ordersSettledTotal":    atomic.LoadUint64(&c.ordersSettled),
		"ordersRejectedTotal":   atomic.LoadUint64(&c.ordersRejected),
		"commissionFailedTotal": atomic.LoadUint64(&c.commissionFailed),
		"jobsFailedTotal":       atomic.LoadUint64(&c.jobsFailed),
	}
}
