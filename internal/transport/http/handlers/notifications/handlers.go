package notificationshandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopledger/internal/domain/notifications"
	"shopledger/internal/transport/http/api"
	"shopledger/internal/transport/http/shared"
)

type Service interface {
	List(ctx context.Context, shopIDs []string, limit, offset int) ([]notifications.Notification, error)
	MarkRead(ctx context.Context, shopIDs []string, notificationID string) error
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/{notificationID}/read", h.handleMarkRead)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	page := shared.ParsePagination(r, 100, 500)
	items, err := h.Service.List(r.Context(), caller.ShopIDs, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "notification_list_failed", "failed to list notifications", shared.RequestID(r))
		return
	}
	api.Success(w, items, shared.RequestID(r))
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	notificationID, ok := shared.IDParam(w, r, "notificationID")
	if !ok {
		return
	}
	if err := h.Service.MarkRead(r.Context(), caller.ShopIDs, notificationID); err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, map[string]string{"status": "read"}, shared.RequestID(r))
}
