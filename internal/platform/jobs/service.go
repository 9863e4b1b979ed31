package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"shopledger/internal/domain/notifications"
	"shopledger/internal/domain/payroll"
	"shopledger/internal/domain/staff"
	"shopledger/internal/domain/stock"
	"shopledger/internal/platform/querier"
)

const (
	JobLowStockScan    = "low_stock_scan"
	JobLowStockNotice  = "low_stock_notice"
	JobPayrollNotice   = "payroll_release_notice"
	defaultQueueLength = 128
)

const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

type LowStockSource interface {
	LowStock(ctx context.Context, shopID string) ([]stock.Unit, error)
}

type Notifier interface {
	Create(ctx context.Context, msg notifications.Message) error
}

type FailureCounter interface {
	JobFailed()
}

// Service runs background work off the request path: a single worker drains the queue and
// an optional ticker enqueues a low-stock scan for every shop. Each run is recorded in job_runs.
type Service struct {
	DB       querier.Querier
	Stock    LowStockSource
	Notify   Notifier
	Failures FailureCounter

	scanInterval time.Duration
	queue        chan job
}

type job struct {
	Type   string
	ShopID string
	Run    func(context.Context) (any, error)
}

func New(db querier.Querier, stockSource LowStockSource, notifier Notifier, scanInterval time.Duration) *Service {
	return &Service{
		DB:           db,
		Stock:        stockSource,
		Notify:       notifier,
		scanInterval: scanInterval,
		queue:        make(chan job, defaultQueueLength),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.scanInterval > 0 {
		go s.scheduleLowStockScan(ctx, s.scanInterval)
	}
}

// Enqueue never blocks; when the queue is full the job is dropped and logged.
func (s *Service) Enqueue(jobType, shopID string, run func(context.Context) (any, error)) bool {
	select {
	case s.queue <- job{Type: jobType, ShopID: shopID, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType, "shopId", shopID)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType, shopID string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, ShopID: shopID, Run: run})
}

// NotifyLowStock queues a notification for units that reached their alert threshold.
func (s *Service) NotifyLowStock(shopID string, units []stock.Unit) {
	if len(units) == 0 {
		return
	}
	msg := lowStockMessage(shopID, units)
	s.Enqueue(JobLowStockNotice, shopID, func(ctx context.Context) (any, error) {
		return map[string]any{"units": len(units)}, s.Notify.Create(ctx, msg)
	})
}

// NotifyPayrollRelease queues the released-salary notice for the employee.
func (s *Service) NotifyPayrollRelease(release payroll.Release, employee staff.Employee) {
	msg := notifications.Message{
		ShopID: release.ShopID,
		UserID: employee.UserID,
		Type:   notifications.TypePayrollReleased,
		Title:  fmt.Sprintf("Salary released for %s", release.SalaryMonth),
		Body: fmt.Sprintf("Hello %s, your salary for %s has been released. Net payable: %s.",
			employee.Name, release.SalaryMonth, release.NetPayable.StringFixed(2)),
		To: employee.Email,
	}
	s.Enqueue(JobPayrollNotice, release.ShopID, func(ctx context.Context) (any, error) {
		return map[string]any{"releaseId": release.ID}, s.Notify.Create(ctx, msg)
	})
}

// ScanShop notifies about every unit of shopID currently at or below its threshold.
func (s *Service) ScanShop(ctx context.Context, shopID string) (any, error) {
	units, err := s.Stock.LowStock(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if len(units) > 0 {
		if err := s.Notify.Create(ctx, lowStockMessage(shopID, units)); err != nil {
			return nil, err
		}
	}
	return map[string]any{"lowStockUnits": len(units)}, nil
}

func lowStockMessage(shopID string, units []stock.Unit) notifications.Message {
	lines := make([]string, 0, len(units))
	for _, u := range units {
		lines = append(lines, fmt.Sprintf("%s: %d left (alert at %d)", u.Name, u.Quantity, u.LowStockAlert))
	}
	return notifications.Message{
		ShopID: shopID,
		Type:   notifications.TypeLowStock,
		Title:  fmt.Sprintf("%d product(s) low on stock", len(units)),
		Body:   strings.Join(lines, "\n"),
	}
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "shopId", j.ShopID, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (shop_id, job_type, status)
    VALUES ($1,$2,$3)
    RETURNING id
  `, nullIfEmpty(j.ShopID), j.Type, RunRunning).Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := RunCompleted
	if err != nil {
		status = RunFailed
		if s.Failures != nil {
			s.Failures.JobFailed()
		}
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleLowStockScan(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			shops, err := s.listShops(ctx)
			if err != nil {
				slog.Warn("low stock scheduler shop lookup failed", "err", err)
				continue
			}
			for _, shopID := range shops {
				s.Enqueue(JobLowStockScan, shopID, func(ctx context.Context) (any, error) {
					return s.ScanShop(ctx, shopID)
				})
			}
		}
	}
}

func (s *Service) listShops(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, `SELECT id FROM shops ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
