package commissionhandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopledger/internal/domain/commission"
	"shopledger/internal/transport/http/api"
	"shopledger/internal/transport/http/shared"
)

type Service interface {
	ListForStaff(ctx context.Context, staffID string, shopIDs []string, limit, offset int) ([]commission.Commission, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/commissions", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	staffID := r.URL.Query().Get("staffId")
	v := shared.NewValidator()
	v.UUID("staffId", staffID)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	items, err := h.Service.ListForStaff(r.Context(), staffID, caller.ShopIDs, page.Limit, page.Offset)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, items, shared.RequestID(r))
}
