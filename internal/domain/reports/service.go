package reports

import (
	"context"
	"fmt"
	"slices"
	"time"

	"shopledger/internal/domain/stock"
	"shopledger/internal/platform/calendar"
)

type LowStockSource interface {
	LowStock(ctx context.Context, shopID string) ([]stock.Unit, error)
}

type Service struct {
	store StoreAPI
	stock LowStockSource
}

func NewService(store StoreAPI, stockSource LowStockSource) *Service {
	return &Service{store: store, stock: stockSource}
}

// Dashboard summarises one shop over the inclusive day range [from, to]. Balances that are not
// tied to a window (open loans and advances, pending leave, low stock) are reported as of now.
func (s *Service) Dashboard(ctx context.Context, shopID string, from, to time.Time, shopIDs []string) (Dashboard, error) {
	if !slices.Contains(shopIDs, shopID) {
		return Dashboard{}, ErrInvalidShop
	}
	from, to = calendar.Truncate(from), calendar.Truncate(to)
	if from.After(to) {
		return Dashboard{}, calendar.ErrInvalidRange
	}
	end := to.AddDate(0, 0, 1)

	out := Dashboard{ShopID: shopID, From: from, To: to}
	var err error
	if out.Sales, err = s.store.Sales(ctx, shopID, from, end); err != nil {
		return Dashboard{}, fmt.Errorf("sales summary: %w", err)
	}
	if out.Commission, err = s.store.CommissionTotal(ctx, shopID, from, end); err != nil {
		return Dashboard{}, fmt.Errorf("commission total: %w", err)
	}
	if out.PayrollReleased, err = s.store.PayrollReleased(ctx, shopID, calendar.MonthKey(from), calendar.MonthKey(to)); err != nil {
		return Dashboard{}, fmt.Errorf("payroll total: %w", err)
	}
	if out.LoanOutstanding, err = s.store.LoanOutstanding(ctx, shopID); err != nil {
		return Dashboard{}, fmt.Errorf("loan balance: %w", err)
	}
	if out.AdvanceOpen, err = s.store.AdvanceOpen(ctx, shopID); err != nil {
		return Dashboard{}, fmt.Errorf("advance balance: %w", err)
	}
	if out.PendingLeave, err = s.store.PendingLeave(ctx, shopID); err != nil {
		return Dashboard{}, fmt.Errorf("pending leave: %w", err)
	}
	if s.stock != nil {
		low, err := s.stock.LowStock(ctx, shopID)
		if err != nil {
			return Dashboard{}, fmt.Errorf("low stock: %w", err)
		}
		out.LowStockUnits = len(low)
	}
	return out, nil
}

func (s *Service) JobRuns(ctx context.Context, shopIDs []string, filter JobRunFilter, limit, offset int) (JobRunPage, error) {
	if filter.ShopID != "" && !slices.Contains(shopIDs, filter.ShopID) {
		return JobRunPage{}, ErrInvalidShop
	}
	items, err := s.store.ListJobRuns(ctx, shopIDs, filter, limit, offset)
	if err != nil {
		return JobRunPage{}, err
	}
	total, err := s.store.CountJobRuns(ctx, shopIDs, filter)
	if err != nil {
		return JobRunPage{}, err
	}
	return JobRunPage{Items: items, Total: total}, nil
}

func (s *Service) JobRun(ctx context.Context, shopIDs []string, runID string) (JobRun, error) {
	return s.store.JobRun(ctx, shopIDs, runID)
}
