package reportshandler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/reports"
	"shopledger/internal/platform/jobs"
	"shopledger/internal/transport/http/api"
	"shopledger/internal/transport/http/middleware"
	"shopledger/internal/transport/http/shared"
)

type Service interface {
	Dashboard(ctx context.Context, shopID string, from, to time.Time, shopIDs []string) (reports.Dashboard, error)
	JobRuns(ctx context.Context, shopIDs []string, filter reports.JobRunFilter, limit, offset int) (reports.JobRunPage, error)
	JobRun(ctx context.Context, shopIDs []string, runID string) (reports.JobRun, error)
}

type Handler struct {
	Service Service
	Now     func() time.Time
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleOwner, auth.RoleManager))
		r.Get("/dashboard", h.handleDashboard)
		r.Get("/job-runs", h.handleJobRuns)
		r.Get("/job-runs/{runID}", h.handleJobRun)
	})
}

// handleDashboard defaults to the current month to date.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	v := shared.NewValidator()
	v.UUID("shopId", q.Get("shopId"))
	from := v.OptionalDate("from", q.Get("from"))
	to := v.OptionalDate("to", q.Get("to"))
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	now := h.Now().UTC()
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	}

	dashboard, err := h.Service.Dashboard(r.Context(), q.Get("shopId"), from, to, caller.ShopIDs)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, dashboard, shared.RequestID(r))
}

func (h *Handler) handleJobRuns(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	v := shared.NewValidator()
	if q.Get("shopId") != "" {
		v.UUID("shopId", q.Get("shopId"))
	}
	v.Enum("jobType", q.Get("jobType"), []string{jobs.JobLowStockScan, jobs.JobLowStockNotice, jobs.JobPayrollNotice}, "is not a known job type")
	v.Enum("status", q.Get("status"), []string{jobs.RunRunning, jobs.RunCompleted, jobs.RunFailed}, "is not a known run status")
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	page := shared.ParsePagination(r, 50, 200)
	result, err := h.Service.JobRuns(r.Context(), caller.ShopIDs, reports.JobRunFilter{
		ShopID:  q.Get("shopId"),
		JobType: q.Get("jobType"),
		Status:  q.Get("status"),
	}, page.Limit, page.Offset)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	shared.SetTotal(w, result.Total)
	api.Success(w, result, shared.RequestID(r))
}

func (h *Handler) handleJobRun(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	runID, ok := shared.IDParam(w, r, "runID")
	if !ok {
		return
	}
	run, err := h.Service.JobRun(r.Context(), caller.ShopIDs, runID)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, run, shared.RequestID(r))
}
