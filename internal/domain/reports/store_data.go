package reports

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"shopledger/internal/domain/leave"
	"shopledger/internal/domain/loans"
	"shopledger/internal/domain/orders"
	"shopledger/internal/domain/payroll"
)

func (s *Store) Sales(ctx context.Context, shopID string, from, to time.Time) (SalesSummary, error) {
	var out SalesSummary
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FILTER (WHERE status <> $4),
           COUNT(1) FILTER (WHERE status = $4),
           COALESCE(SUM(total) FILTER (WHERE status <> $4), 0),
           COALESCE(SUM(LEAST(paid_amount, total)) FILTER (WHERE status <> $4), 0),
           COALESCE(SUM(tax) FILTER (WHERE status <> $4), 0),
           COALESCE(SUM(discount) FILTER (WHERE status <> $4), 0)
    FROM orders
    WHERE shop_id::text = $1 AND created_at >= $2 AND created_at < $3
  `, shopID, from, to, orders.StatusCancelled).Scan(&out.Orders, &out.CancelledOrders, &out.Revenue, &out.Collected, &out.Tax, &out.Discount)
	if err != nil {
		return SalesSummary{}, err
	}
	out.Outstanding = out.Revenue.Sub(out.Collected)
	return out, nil
}

func (s *Store) CommissionTotal(ctx context.Context, shopID string, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(commission_amount), 0)
    FROM commissions
    WHERE shop_id::text = $1 AND created_at >= $2 AND created_at < $3
  `, shopID, from, to).Scan(&total)
	return total, err
}

func (s *Store) PayrollReleased(ctx context.Context, shopID, fromMonth, toMonth string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(net_payable), 0)
    FROM payroll_releases
    WHERE shop_id::text = $1 AND status = $2 AND salary_month >= $3 AND salary_month <= $4
  `, shopID, payroll.StatusReleased, fromMonth, toMonth).Scan(&total)
	return total, err
}

func (s *Store) LoanOutstanding(ctx context.Context, shopID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(l.remaining_balance), 0)
    FROM employee_loans l
    JOIN employees e ON e.id = l.employee_id
    WHERE e.shop_id::text = $1 AND l.status = $2
  `, shopID, loans.StatusActive).Scan(&total)
	return total, err
}

func (s *Store) AdvanceOpen(ctx context.Context, shopID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(a.amount - a.deducted_amount), 0)
    FROM employee_advances a
    JOIN employees e ON e.id = a.employee_id
    WHERE e.shop_id::text = $1
  `, shopID).Scan(&total)
	return total, err
}

func (s *Store) PendingLeave(ctx context.Context, shopID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM leave_requests r
    JOIN employees e ON e.id = r.employee_id
    WHERE e.shop_id::text = $1 AND r.status = $2
  `, shopID, leave.StatusPending).Scan(&count)
	return count, err
}

func (s *Store) ListJobRuns(ctx context.Context, shopIDs []string, filter JobRunFilter, limit, offset int) ([]JobRun, error) {
	query, args := buildJobRunsBaseQuery(shopIDs, filter)
	query += " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []JobRun{}
	for rows.Next() {
		run, err := scanJobRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *Store) CountJobRuns(ctx context.Context, shopIDs []string, filter JobRunFilter) (int, error) {
	query, args := buildJobRunsBaseQuery(shopIDs, filter)
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM ("+query+") job_runs", args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) JobRun(ctx context.Context, shopIDs []string, runID string) (JobRun, error) {
	run, err := scanJobRun(s.DB.QueryRow(ctx, `
    SELECT id, COALESCE(shop_id::text, ''), job_type, status, COALESCE(details_json, '{}'::jsonb), created_at, completed_at
    FROM job_runs
    WHERE id::text = $1 AND shop_id::text = ANY($2::text[])
  `, runID, shopIDs))
	if errors.Is(err, pgx.ErrNoRows) {
		return JobRun{}, ErrJobRunNotFound
	}
	return run, err
}

func buildJobRunsBaseQuery(shopIDs []string, filter JobRunFilter) (string, []any) {
	query := `
    SELECT id, COALESCE(shop_id::text, ''), job_type, status, COALESCE(details_json, '{}'::jsonb), created_at, completed_at
    FROM job_runs
    WHERE shop_id::text = ANY($1::text[])
  `
	args := []any{shopIDs}

	if value := strings.TrimSpace(filter.ShopID); value != "" {
		query += " AND shop_id::text = $" + strconv.Itoa(len(args)+1)
		args = append(args, value)
	}
	if value := strings.TrimSpace(filter.JobType); value != "" {
		query += " AND job_type = $" + strconv.Itoa(len(args)+1)
		args = append(args, value)
	}
	if value := strings.TrimSpace(filter.Status); value != "" {
		query += " AND status = $" + strconv.Itoa(len(args)+1)
		args = append(args, value)
	}
	return query, args
}

func scanJobRun(row pgx.Row) (JobRun, error) {
	var run JobRun
	var detailsRaw []byte
	if err := row.Scan(&run.ID, &run.ShopID, &run.JobType, &run.Status, &detailsRaw, &run.CreatedAt, &run.CompletedAt); err != nil {
		return JobRun{}, err
	}
	run.Details = decodeDetails(detailsRaw)
	return run, nil
}

func decodeDetails(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	details := map[string]any{}
	if err := json.Unmarshal(raw, &details); err != nil {
		return map[string]any{
			"raw": string(raw),
		}
	}
	return details
}
