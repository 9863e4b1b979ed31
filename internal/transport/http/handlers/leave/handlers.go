package leavehandler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/leave"
	"shopledger/internal/transport/http/api"
	"shopledger/internal/transport/http/middleware"
	"shopledger/internal/transport/http/shared"
)

type Service interface {
	Create(ctx context.Context, req leave.CreateRequest, shopIDs []string) (leave.Request, error)
	Decide(ctx context.Context, requestID, decision string, shopIDs []string, approverID string) (leave.Request, error)
	ListRequests(ctx context.Context, shopIDs []string, filter leave.RequestFilter) ([]leave.Request, error)
	CreateHoliday(ctx context.Context, req leave.HolidayRequest, shopIDs []string, actorID string) (leave.Holiday, error)
	DeleteHoliday(ctx context.Context, holidayID string, shopIDs []string, actorID string) error
	ListHolidays(ctx context.Context, shopID string, shopIDs []string, from, to time.Time) ([]leave.Holiday, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	managers := middleware.RequireRole(auth.RoleOwner, auth.RoleManager)
	r.Route("/leave/requests", func(r chi.Router) {
		r.Post("/", h.handleCreateRequest)
		r.Get("/", h.handleListRequests)
		r.With(managers).Post("/{requestID}/decision", h.handleDecide)
	})
	r.Route("/holidays", func(r chi.Router) {
		r.With(managers).Post("/", h.handleCreateHoliday)
		r.Get("/", h.handleListHolidays)
		r.With(managers).Delete("/{holidayID}", h.handleDeleteHoliday)
	})
}

type requestPayload struct {
	EmployeeID string `json:"employeeId"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	LeaveType  string `json:"leaveType"`
	Notes      string `json:"notes"`
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	var payload requestPayload
	if !shared.Decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.UUID("employeeId", payload.EmployeeID)
	v.Required("leaveType", payload.LeaveType, "is required")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	req, err := h.Service.Create(r.Context(), leave.CreateRequest{
		EmployeeID: payload.EmployeeID,
		StartDate:  start,
		EndDate:    end,
		LeaveType:  payload.LeaveType,
		Notes:      payload.Notes,
	}, caller.ShopIDs)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Created(w, req, shared.RequestID(r))
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	filter := leave.RequestFilter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		Status:     r.URL.Query().Get("status"),
	}
	items, err := h.Service.ListRequests(r.Context(), caller.ShopIDs, filter)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, items, shared.RequestID(r))
}

type decisionPayload struct {
	Decision string `json:"decision"`
}

func (h *Handler) handleDecide(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	requestID, ok := shared.IDParam(w, r, "requestID")
	if !ok {
		return
	}
	var payload decisionPayload
	if !shared.Decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("decision", payload.Decision, "is required")
	v.Enum("decision", payload.Decision, []string{leave.StatusApproved, leave.StatusRejected}, "must be approved or rejected")
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	req, err := h.Service.Decide(r.Context(), requestID, payload.Decision, caller.ShopIDs, caller.UserID)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, req, shared.RequestID(r))
}

type holidayPayload struct {
	ShopID      string `json:"shopId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

func (h *Handler) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	var payload holidayPayload
	if !shared.Decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("shopId", payload.ShopID, "is required")
	v.Required("description", payload.Description, "is required")
	start, _ := v.Date("startDate", payload.StartDate)
	end := start
	if payload.EndDate != "" {
		end, _ = v.Date("endDate", payload.EndDate)
	}
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	holiday, err := h.Service.CreateHoliday(r.Context(), leave.HolidayRequest{
		ShopID:      payload.ShopID,
		StartDate:   start,
		EndDate:     end,
		Description: payload.Description,
	}, caller.ShopIDs, caller.UserID)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Created(w, holiday, shared.RequestID(r))
}

func (h *Handler) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	v := shared.NewValidator()
	v.Required("shopId", q.Get("shopId"), "is required")
	from := v.OptionalDate("from", q.Get("from"))
	to := v.OptionalDate("to", q.Get("to"))
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	holidays, err := h.Service.ListHolidays(r.Context(), q.Get("shopId"), caller.ShopIDs, from, to)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, holidays, shared.RequestID(r))
}

func (h *Handler) handleDeleteHoliday(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	holidayID, ok := shared.IDParam(w, r, "holidayID")
	if !ok {
		return
	}
	if err := h.Service.DeleteHoliday(r.Context(), holidayID, caller.ShopIDs, caller.UserID); err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, shared.RequestID(r))
}
