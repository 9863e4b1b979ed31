package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"shopledger/internal/platform/querier"
	"shopledger/internal/requestctx"
)

const (
	ActionOrderCreate    = "order.create"
	ActionOrderStatus    = "order.status"
	ActionStockAdjust    = "stock.adjust"
	ActionPayrollRelease = "payroll.release"
	ActionLoanCreate     = "loan.create"
	ActionLoanPayment    = "loan.payment"
	ActionAdvanceCreate  = "advance.create"
	ActionAttendanceEdit = "attendance.correct"
	ActionAttendanceDrop = "attendance.delete"
	ActionSalaryAppend   = "salary.append"
	ActionLeaveDecision  = "leave.decide"
	ActionHolidayChange  = "holiday.change"
	ActionCommissionBook = "commission.record"

	EntityOrder          = "order"
	EntityStockUnit      = "stock_unit"
	EntityPayrollRelease = "payroll_release"
	EntityLoan           = "employee_loan"
	EntityAdvance        = "employee_advance"
	EntityAttendance     = "attendance_record"
	EntitySalaryHistory  = "salary_history"
	EntityLeaveRequest   = "leave_request"
	EntityHoliday        = "holiday"
	EntityCommission     = "commission"
)

// Entry is one audit row to be written. Before and After are marshalled to JSON.
type Entry struct {
	ShopID     string
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Before     any
	After      any
}

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	EntityID   string
}

type Service struct {
	DB querier.Querier
}

func New(db querier.Querier) *Service {
	return &Service{DB: db}
}

// Record writes outside any transaction.
func (s *Service) Record(ctx context.Context, entry Entry) error {
	return write(ctx, s.DB, entry)
}

// RecordTx writes inside tx so the audit row commits or rolls back with the change it describes.
func (s *Service) RecordTx(ctx context.Context, tx pgx.Tx, entry Entry) error {
	return write(ctx, tx, entry)
}

func write(ctx context.Context, q querier.Querier, entry Entry) error {
	beforeJSON, err := marshalOptional(entry.Before)
	if err != nil {
		return err
	}
	afterJSON, err := marshalOptional(entry.After)
	if err != nil {
		return err
	}
	meta := requestctx.From(ctx)

	_, err = q.Exec(ctx, `
    INSERT INTO audit_events (shop_id, actor_user_id, action, entity_type, entity_id, before_json, after_json, request_id, ip)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
  `, entry.ShopID, entry.ActorID, entry.Action, entry.EntityType, entry.EntityID, beforeJSON, afterJSON, meta.RequestID, meta.ClientIP)
	if err != nil {
		return fmt.Errorf("audit %s: %w", entry.Action, err)
	}
	return nil
}

func marshalOptional(value any) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	return json.Marshal(value)
}

func (s *Service) List(ctx context.Context, shopID string, filter Filter, limit, offset int) ([]Event, error) {
	query, args := buildQuery("SELECT id, actor_user_id, action, entity_type, entity_id, request_id, ip, created_at, before_json, after_json", shopID, filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt, &evt.Before, &evt.After); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func buildQuery(prefix, shopID string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_events WHERE shop_id = $1"
	args := []any{shopID}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", len(args)+1)
		args = append(args, filter.Action)
	}
	if filter.EntityType != "" {
		query += fmt.Sprintf(" AND entity_type = $%d", len(args)+1)
		args = append(args, filter.EntityType)
	}
	if filter.EntityID != "" {
		query += fmt.Sprintf(" AND entity_id = $%d", len(args)+1)
		args = append(args, filter.EntityID)
	}
	return query, args
}
