package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type StoreAPI interface {
	Sales(ctx context.Context, shopID string, from, to time.Time) (SalesSummary, error)
	CommissionTotal(ctx context.Context, shopID string, from, to time.Time) (decimal.Decimal, error)
	PayrollReleased(ctx context.Context, shopID, fromMonth, toMonth string) (decimal.Decimal, error)
	LoanOutstanding(ctx context.Context, shopID string) (decimal.Decimal, error)
	AdvanceOpen(ctx context.Context, shopID string) (decimal.Decimal, error)
	PendingLeave(ctx context.Context, shopID string) (int, error)
	ListJobRuns(ctx context.Context, shopIDs []string, filter JobRunFilter, limit, offset int) ([]JobRun, error)
	CountJobRuns(ctx context.Context, shopIDs []string, filter JobRunFilter) (int, error)
	JobRun(ctx context.Context, shopIDs []string, runID string) (JobRun, error)
}
