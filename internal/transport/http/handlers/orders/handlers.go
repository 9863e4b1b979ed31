package ordershandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopledger/internal/domain/orders"
	"shopledger/internal/transport/http/api"
	"shopledger/internal/transport/http/middleware"
	"shopledger/internal/transport/http/shared"
)

const endpointCreate = "orders.create"

type Service interface {
	Create(ctx context.Context, req orders.CreateRequest, shopIDs []string, actorID string) (orders.Order, error)
	Get(ctx context.Context, orderID string, shopIDs []string) (orders.Order, error)
	List(ctx context.Context, shopIDs []string, filter orders.ListFilter, limit, offset int) (orders.ListResult, error)
	UpdateStatus(ctx context.Context, orderID, status string, shopIDs []string, actorID string) (orders.Order, error)
}

type Idempotency interface {
	Claim(ctx context.Context, k middleware.IdempotencyKey) (json.RawMessage, bool, error)
	Complete(ctx context.Context, k middleware.IdempotencyKey, response json.RawMessage) error
	Abandon(ctx context.Context, k middleware.IdempotencyKey) error
}

type Handler struct {
	Service     Service
	Idempotency Idempotency
}

func NewHandler(service Service, idempotency Idempotency) *Handler {
	return &Handler{Service: service, Idempotency: idempotency}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{orderID}", h.handleGet)
		r.Post("/{orderID}/status", h.handleUpdateStatus)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "failed to read request body", shared.RequestID(r))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	var req orders.CreateRequest
	if !shared.Decode(w, r, &req) {
		return
	}
	v := shared.NewValidator()
	v.Required("shopId", req.ShopID, "is required")
	v.Required("customerName", req.CustomerName, "is required")
	if len(req.Items) == 0 {
		v.Add("items", "must contain at least one item")
	}
	if req.StaffID != "" {
		v.UUID("staffId", req.StaffID)
	}
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	key, keyed := middleware.KeyFromRequest(r, req.ShopID, caller.UserID, endpointCreate, raw)
	keyed = keyed && h.Idempotency != nil
	if keyed {
		stored, replay, err := h.Idempotency.Claim(r.Context(), key)
		switch {
		case errors.Is(err, middleware.ErrIdempotencyConflict):
			api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), shared.RequestID(r))
			return
		case errors.Is(err, middleware.ErrIdempotencyInProgress):
			api.Fail(w, http.StatusConflict, "idempotency_in_progress", err.Error(), shared.RequestID(r))
			return
		case err != nil:
			shared.Fail(w, r, err)
			return
		case replay:
			api.Created(w, stored, shared.RequestID(r))
			return
		}
	}

	order, err := h.Service.Create(r.Context(), req, caller.ShopIDs, caller.UserID)
	if err != nil {
		if keyed {
			if err := h.Idempotency.Abandon(context.WithoutCancel(r.Context()), key); err != nil {
				slog.Warn("idempotency release failed", "key", key.Key, "err", err)
			}
		}
		shared.Fail(w, r, err)
		return
	}

	if keyed {
		if payload, err := json.Marshal(order); err != nil {
			slog.Error("idempotency marshal failed", "orderId", order.ID, "err", err)
		} else if err := h.Idempotency.Complete(context.WithoutCancel(r.Context()), key, payload); err != nil {
			slog.Error("idempotency save failed", "orderId", order.ID, "err", err)
		}
	}
	api.Created(w, order, shared.RequestID(r))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	v := shared.NewValidator()
	from := v.OptionalDate("from", q.Get("from"))
	to := v.OptionalDate("to", q.Get("to"))
	v.DateOrder("from", from, "to", to)
	v.Enum("status", q.Get("status"), []string{orders.StatusPending, orders.StatusProcessing, orders.StatusCompleted, orders.StatusCancelled}, "is not a known status")
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	filter := orders.ListFilter{
		ShopID:        q.Get("shopId"),
		Status:        q.Get("status"),
		PaymentStatus: q.Get("paymentStatus"),
	}
	if !from.IsZero() {
		filter.From = &from
	}
	if !to.IsZero() {
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}

	page := shared.ParsePagination(r, 50, 200)
	result, err := h.Service.List(r.Context(), caller.ShopIDs, filter, page.Limit, page.Offset)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	shared.SetTotal(w, result.Total)
	api.Success(w, result, shared.RequestID(r))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	orderID, ok := shared.IDParam(w, r, "orderID")
	if !ok {
		return
	}
	order, err := h.Service.Get(r.Context(), orderID, caller.ShopIDs)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, order, shared.RequestID(r))
}

type statusPayload struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	orderID, ok := shared.IDParam(w, r, "orderID")
	if !ok {
		return
	}
	var payload statusPayload
	if !shared.Decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("status", payload.Status, "is required")
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	order, err := h.Service.UpdateStatus(r.Context(), orderID, payload.Status, caller.ShopIDs, caller.UserID)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, order, shared.RequestID(r))
}
