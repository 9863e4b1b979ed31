package audithandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopledger/internal/domain/audit"
	"shopledger/internal/domain/auth"
	"shopledger/internal/transport/http/api"
	"shopledger/internal/transport/http/middleware"
	"shopledger/internal/transport/http/shared"
)

type Service interface {
	List(ctx context.Context, shopID string, filter audit.Filter, limit, offset int) ([]audit.Event, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireRole(auth.RoleOwner, auth.RoleManager)).Get("/audit/events", h.handleListEvents)
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	shopID := q.Get("shopId")
	if !caller.CanAccess(shopID) {
		api.Fail(w, http.StatusForbidden, "invalid_shop", "shop is not accessible", shared.RequestID(r))
		return
	}

	page := shared.ParsePagination(r, 100, 500)
	filter := audit.Filter{Action: q.Get("action"), EntityType: q.Get("entityType"), EntityID: q.Get("entityId")}
	events, err := h.Service.List(r.Context(), shopID, filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", shared.RequestID(r))
		return
	}
	api.Success(w, events, shared.RequestID(r))
}
