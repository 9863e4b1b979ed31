package attendancehandler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shopledger/internal/domain/attendance"
	"shopledger/internal/domain/auth"
	"shopledger/internal/transport/http/api"
	"shopledger/internal/transport/http/middleware"
	"shopledger/internal/transport/http/shared"
)

type Service interface {
	Touch(ctx context.Context, employeeID string, day time.Time, shopIDs []string) (attendance.Record, error)
	Correct(ctx context.Context, employeeID string, day time.Time, patch attendance.Patch, shopIDs []string, actorID string) (attendance.Record, error)
	Delete(ctx context.Context, employeeID string, day time.Time, shopIDs []string, actorID string) error
	ListRange(ctx context.Context, employeeID string, from, to time.Time, shopIDs []string) ([]attendance.Record, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	managers := middleware.RequireRole(auth.RoleOwner, auth.RoleManager)
	r.Route("/attendance/{employeeID}", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/{date}", h.handleTouch)
		r.With(managers).Put("/{date}", h.handleCorrect)
		r.With(managers).Delete("/{date}", h.handleDelete)
	})
}

// dayParams reads the employee id and the calendar day from the path.
func dayParams(w http.ResponseWriter, r *http.Request) (string, time.Time, bool) {
	employeeID, ok := shared.IDParam(w, r, "employeeID")
	if !ok {
		return "", time.Time{}, false
	}
	v := shared.NewValidator()
	day, _ := v.Date("date", chi.URLParam(r, "date"))
	if v.Reject(w, shared.RequestID(r)) {
		return "", time.Time{}, false
	}
	return employeeID, day, true
}

func (h *Handler) handleTouch(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	employeeID, day, ok := dayParams(w, r)
	if !ok {
		return
	}
	record, err := h.Service.Touch(r.Context(), employeeID, day, caller.ShopIDs)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, record, shared.RequestID(r))
}

func (h *Handler) handleCorrect(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	employeeID, day, ok := dayParams(w, r)
	if !ok {
		return
	}
	var patch attendance.Patch
	if !shared.Decode(w, r, &patch) {
		return
	}
	v := shared.NewValidator()
	if patch.LateMinutes != nil && *patch.LateMinutes < 0 {
		v.Add("lateMinutes", "must not be negative")
	}
	if patch.ExtraMinutes != nil && *patch.ExtraMinutes < 0 {
		v.Add("extraMinutes", "must not be negative")
	}
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	record, err := h.Service.Correct(r.Context(), employeeID, day, patch, caller.ShopIDs, caller.UserID)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, record, shared.RequestID(r))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	employeeID, day, ok := dayParams(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), employeeID, day, caller.ShopIDs, caller.UserID); err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, shared.RequestID(r))
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
	v := shared.NewValidator()
	from, _ := v.Date("from", r.URL.Query().Get("from"))
	to, _ := v.Date("to", r.URL.Query().Get("to"))
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	records, err := h.Service.ListRange(r.Context(), employeeID, from, to, caller.ShopIDs)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, records, shared.RequestID(r))
}
