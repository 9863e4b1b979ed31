package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"shopledger/internal/domain/audit"
	"shopledger/internal/domain/commission"
	"shopledger/internal/domain/stock"
	"shopledger/internal/platform/money"
)

type StockLedger interface {
	UnitLocker
	DebitTx(ctx context.Context, tx pgx.Tx, c stock.Change) (stock.Movement, error)
	CreditTx(ctx context.Context, tx pgx.Tx, c stock.Change) (stock.Movement, error)
}

type CommissionRecorder interface {
	RecordFromOrderTx(ctx context.Context, tx pgx.Tx, in commission.Input) (*commission.Commission, error)
}

type Auditor interface {
	RecordTx(ctx context.Context, tx pgx.Tx, entry audit.Entry) error
}

type Metrics interface {
	OrderSettled()
	OrderRejected()
	CommissionFailed()
}

// LowStockNotifier receives units that fell to or below their alert threshold. It is called
// after commit and must not block.
type LowStockNotifier interface {
	NotifyLowStock(shopID string, units []stock.Unit)
}

type Service struct {
	store      StoreAPI
	validator  *Validator
	ledger     StockLedger
	commission CommissionRecorder
	audit      Auditor

	Metrics  Metrics
	LowStock LowStockNotifier
	Now      func() time.Time
}

func NewService(store StoreAPI, ledger StockLedger, commissions CommissionRecorder, auditor Auditor) *Service {
	return &Service{
		store:      store,
		validator:  NewValidator(ledger),
		ledger:     ledger,
		commission: commissions,
		audit:      auditor,
		Now:        time.Now,
	}
}

// Create settles an order in one transaction: validate and price the lines, persist the
// order and lines, debit stock, then book the staff commission if one is owed.
func (s *Service) Create(ctx context.Context, req CreateRequest, shopIDs []string, actorID string) (Order, error) {
	order, low, err := s.settle(ctx, req, shopIDs, actorID)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) && s.Metrics != nil {
			s.Metrics.OrderRejected()
		}
		return Order{}, err
	}
	if s.Metrics != nil {
		s.Metrics.OrderSettled()
	}
	if len(low) > 0 && s.LowStock != nil {
		s.LowStock.NotifyLowStock(order.ShopID, low)
	}
	return order, nil
}

func (s *Service) settle(ctx context.Context, req CreateRequest, shopIDs []string, actorID string) (Order, []stock.Unit, error) {
	if !slices.Contains(shopIDs, req.ShopID) {
		return Order{}, nil, ErrInvalidShop
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return Order{}, nil, ErrCustomerRequired
	}
	if len(req.Items) == 0 {
		return Order{}, nil, ErrEmptyOrder
	}
	if !money.NonNegative(req.Tax, req.Discount, req.CashAmount, req.CardAmount, req.WalletAmount) {
		return Order{}, nil, ErrInvalidAmount
	}
	status := req.Status
	if status == "" {
		status = StatusPending
	}
	if status != StatusPending && status != StatusProcessing && status != StatusCompleted {
		return Order{}, nil, ErrInvalidStatus
	}
	cash, card, wallet := money.Round(req.CashAmount), money.Round(req.CardAmount), money.Round(req.WalletAmount)
	method, err := PaymentMethod(cash, card, wallet, req.PaymentMethod)
	if err != nil {
		return Order{}, nil, err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return Order{}, nil, err
	}
	defer rollback(ctx, tx)

	validated, err := s.validator.Validate(ctx, tx, req.Items, shopIDs)
	if err != nil {
		return Order{}, nil, err
	}

	tax, discount := money.Round(req.Tax), money.Round(req.Discount)
	total := validated.Subtotal.Add(tax).Sub(discount)
	if total.IsNegative() {
		return Order{}, nil, ErrInvalidAmount
	}
	paid := money.Sum(cash, card, wallet)

	order, err := s.store.InsertOrderTx(ctx, tx, Order{
		ShopID:        req.ShopID,
		OrderNumber:   NewOrderNumber(s.Now()),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		Subtotal:      validated.Subtotal,
		Tax:           tax,
		Discount:      discount,
		Total:         total,
		CashAmount:    cash,
		CardAmount:    card,
		WalletAmount:  wallet,
		PaidAmount:    paid,
		PaymentMethod: method,
		PaymentStatus: PaymentStatus(paid, total, req.KitchenPending),
		Status:        status,
		StaffID:       req.StaffID,
		Notes:         req.Notes,
		CreatedBy:     actorID,
	})
	if err != nil {
		return Order{}, nil, err
	}

	lowByUnit := map[string]stock.Unit{}
	var lowOrder []string
	for _, priced := range validated.Lines {
		line := priced.Line
		line.OrderID = order.ID
		line, err = s.store.InsertLineTx(ctx, tx, line)
		if err != nil {
			return Order{}, nil, err
		}
		movement, err := s.ledger.DebitTx(ctx, tx, stock.Change{
			Unit:     priced.Unit,
			Quantity: line.Quantity,
			OrderID:  order.ID,
			Note:     "order " + order.OrderNumber,
			ActorID:  actorID,
		})
		if err != nil {
			return Order{}, nil, err
		}
		order.Lines = append(order.Lines, line)

		if movement.NewStock <= priced.Unit.LowStockAlert {
			key := priced.Unit.ProductID + "/" + priced.Unit.VariantID
			if _, seen := lowByUnit[key]; !seen {
				lowOrder = append(lowOrder, key)
			}
			unit := priced.Unit
			unit.Quantity = movement.NewStock
			lowByUnit[key] = unit
		}
	}

	if req.StaffID != "" && s.commission != nil {
		order.Commission = s.bookCommission(ctx, tx, order, shopIDs)
	}

	if err := s.audit.RecordTx(ctx, tx, audit.Entry{
		ShopID:     order.ShopID,
		ActorID:    actorID,
		Action:     audit.ActionOrderCreate,
		EntityType: audit.EntityOrder,
		EntityID:   order.ID,
		After: map[string]any{
			"orderNumber":   order.OrderNumber,
			"total":         order.Total,
			"paymentStatus": order.PaymentStatus,
			"lines":         len(order.Lines),
		},
	}); err != nil {
		return Order{}, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, nil, fmt.Errorf("commit order: %w", err)
	}

	low := make([]stock.Unit, 0, len(lowOrder))
	for _, key := range lowOrder {
		low = append(low, lowByUnit[key])
	}
	return order, low, nil
}

// bookCommission runs inside a savepoint so that a failed commission leaves the order
// transaction usable. Failures are logged and never returned.
func (s *Service) bookCommission(ctx context.Context, tx pgx.Tx, order Order, shopIDs []string) *commission.Commission {
	sp, err := tx.Begin(ctx)
	if err != nil {
		s.commissionFailed(order, err)
		return nil
	}
	c, err := s.commission.RecordFromOrderTx(ctx, sp, commission.Input{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		ShopID:      order.ShopID,
		Total:       order.Total,
		StaffID:     order.StaffID,
		ShopIDs:     shopIDs,
	})
	if err == nil {
		err = sp.Commit(ctx)
	}
	if err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Warn("commission savepoint rollback failed", "orderId", order.ID, "err", rbErr)
		}
		s.commissionFailed(order, err)
		return nil
	}
	return c
}

func (s *Service) commissionFailed(order Order, err error) {
	slog.Warn("commission not recorded", "orderId", order.ID, "staffId", order.StaffID, "err", err)
	if s.Metrics != nil {
		s.Metrics.CommissionFailed()
	}
}

func (s *Service) Get(ctx context.Context, orderID string, shopIDs []string) (Order, error) {
	return s.store.Get(ctx, orderID, shopIDs)
}

func (s *Service) List(ctx context.Context, shopIDs []string, filter ListFilter, limit, offset int) (ListResult, error) {
	if filter.ShopID != "" && !slices.Contains(shopIDs, filter.ShopID) {
		return ListResult{}, ErrInvalidShop
	}
	return s.store.List(ctx, shopIDs, filter, limit, offset)
}

func CanTransition(from, to string) bool {
	return slices.Contains(transitions[from], to)
}

// UpdateStatus advances an order. Cancelling returns every line's quantity to stock through
// return movements in the same transaction. Monetary fields never change.
func (s *Service) UpdateStatus(ctx context.Context, orderID, status string, shopIDs []string, actorID string) (Order, error) {
	switch status {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
	default:
		return Order{}, ErrInvalidStatus
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return Order{}, err
	}
	defer rollback(ctx, tx)

	order, err := s.store.LockOrderTx(ctx, tx, orderID, shopIDs)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(order.Status, status) {
		return Order{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, status)
	}

	if status == StatusCancelled {
		for _, line := range order.Lines {
			unit, err := s.ledger.LockTx(ctx, tx, shopIDs, line.ProductID, line.VariantID)
			if err != nil {
				return Order{}, fmt.Errorf("restock line %d: %w", line.LineNo, err)
			}
			if _, err := s.ledger.CreditTx(ctx, tx, stock.Change{
				Unit:     unit,
				Quantity: line.Quantity,
				OrderID:  order.ID,
				Note:     "cancel " + order.OrderNumber,
				ActorID:  actorID,
			}); err != nil {
				return Order{}, err
			}
		}
	}

	previous := order.Status
	order.UpdatedAt, err = s.store.UpdateStatusTx(ctx, tx, order.ID, status)
	if err != nil {
		return Order{}, err
	}
	order.Status = status

	if err := s.audit.RecordTx(ctx, tx, audit.Entry{
		ShopID:     order.ShopID,
		ActorID:    actorID,
		Action:     audit.ActionOrderStatus,
		EntityType: audit.EntityOrder,
		EntityID:   order.ID,
		Before:     map[string]string{"status": previous},
		After:      map[string]string{"status": status},
	}); err != nil {
		return Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, fmt.Errorf("commit order status: %w", err)
	}
	return order, nil
}

func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Warn("order rollback failed", "err", err)
	}
}
