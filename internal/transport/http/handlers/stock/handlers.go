package stockhandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/stock"
	"shopledger/internal/transport/http/api"
	"shopledger/internal/transport/http/middleware"
	"shopledger/internal/transport/http/shared"
)

type Ledger interface {
	Adjust(ctx context.Context, req stock.AdjustRequest, shopIDs []string, actorID string) (stock.Movement, error)
	ListMovements(ctx context.Context, shopIDs []string, filter stock.MovementFilter, limit, offset int) ([]stock.Movement, error)
	LowStock(ctx context.Context, shopID string) ([]stock.Unit, error)
}

type Handler struct {
	Ledger Ledger
}

func NewHandler(ledger Ledger) *Handler {
	return &Handler{Ledger: ledger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/stock", func(r chi.Router) {
		r.With(middleware.RequireRole(auth.RoleOwner, auth.RoleManager)).Post("/adjustments", h.handleAdjust)
		r.Get("/movements", h.handleMovements)
		r.Get("/low", h.handleLowStock)
	})
}

func (h *Handler) handleAdjust(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	var req stock.AdjustRequest
	if !shared.Decode(w, r, &req) {
		return
	}
	v := shared.NewValidator()
	v.Required("productId", req.ProductID, "is required")
	if req.Delta == 0 {
		v.Add("delta", "must not be zero")
	}
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	movement, err := h.Ledger.Adjust(r.Context(), req, caller.ShopIDs, caller.UserID)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Created(w, movement, shared.RequestID(r))
}

func (h *Handler) handleMovements(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	filter := stock.MovementFilter{
		ProductID: r.URL.Query().Get("productId"),
		VariantID: r.URL.Query().Get("variantId"),
	}
	movements, err := h.Ledger.ListMovements(r.Context(), caller.ShopIDs, filter, page.Limit, page.Offset)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, movements, shared.RequestID(r))
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	shopID := r.URL.Query().Get("shopId")
	if !caller.CanAccess(shopID) {
		api.Fail(w, http.StatusForbidden, "invalid_shop", "shop is not accessible", shared.RequestID(r))
		return
	}
	units, err := h.Ledger.LowStock(r.Context(), shopID)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, units, shared.RequestID(r))
}
