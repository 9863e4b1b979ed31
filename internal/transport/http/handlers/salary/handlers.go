package salaryhandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/salary"
	"shopledger/internal/transport/http/api"
	"shopledger/internal/transport/http/middleware"
	"shopledger/internal/transport/http/shared"
)

type Service interface {
	Append(ctx context.Context, req salary.AppendRequest, shopIDs []string, actorID string) (salary.Entry, error)
	List(ctx context.Context, employeeID string, shopIDs []string) ([]salary.Entry, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/salary/{employeeID}", func(r chi.Router) {
		r.With(middleware.RequireRole(auth.RoleOwner, auth.RoleManager)).Post("/", h.handleAppend)
		r.Get("/", h.handleList)
	})
}

type appendPayload struct {
	Amount    decimal.Decimal `json:"amount"`
	StartDate string          `json:"startDate"`
}

func (h *Handler) handleAppend(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	employeeID, ok := shared.IDParam(w, r, "employeeID")
	if !ok {
		return
	}
	var payload appendPayload
	if !shared.Decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Positive("amount", payload.Amount)
	start, _ := v.Date("startDate", payload.StartDate)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	entry, err := h.Service.Append(r.Context(), salary.AppendRequest{
		EmployeeID: employeeID,
		Amount:     payload.Amount,
		StartDate:  start,
	}, caller.ShopIDs, caller.UserID)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Created(w, entry, shared.RequestID(r))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	employeeID, ok := shared.IDParam(w, r, "employeeID")
	if !ok {
		return
	}
	entries, err := h.Service.List(r.Context(), employeeID, caller.ShopIDs)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, entries, shared.RequestID(r))
}
