package payrollhandler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/payroll"
	"shopledger/internal/transport/http/api"
	"shopledger/internal/transport/http/middleware"
	"shopledger/internal/transport/http/shared"
)

type Service interface {
	Calculate(ctx context.Context, employeeID string, period payroll.Period, shopIDs []string) (payroll.Breakdown, error)
	Release(ctx context.Context, req payroll.ReleaseRequest, shopIDs []string, actorID string) (payroll.Release, error)
	GetRelease(ctx context.Context, releaseID string, shopIDs []string) (payroll.Release, error)
	ListReleases(ctx context.Context, shopIDs []string, filter payroll.ReleaseFilter, limit, offset int) ([]payroll.Release, error)
	PayslipPDF(ctx context.Context, releaseID string, shopIDs []string) ([]byte, payroll.Release, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Get("/{employeeID}/calculate", h.handleCalculate)
		r.With(middleware.RequireRole(auth.RoleOwner, auth.RoleManager)).Post("/releases", h.handleRelease)
		r.Get("/releases", h.handleListReleases)
		r.Get("/releases/{releaseID}", h.handleGetRelease)
		r.Get("/releases/{releaseID}/payslip", h.handlePayslip)
	})
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	employeeID, ok := shared.IDParam(w, r, "employeeID")
	if !ok {
		return
	}

	q := r.URL.Query()
	var period payroll.Period
	var err error
	if month := q.Get("month"); month != "" {
		period, err = payroll.MonthPeriod(month)
	} else {
		v := shared.NewValidator()
		from, _ := v.Date("from", q.Get("from"))
		to, _ := v.Date("to", q.Get("to"))
		if v.Reject(w, shared.RequestID(r)) {
			return
		}
		period, err = payroll.RangePeriod(from, to)
	}
	if err != nil {
		shared.Fail(w, r, err)
		return
	}

	breakdown, err := h.Service.Calculate(r.Context(), employeeID, period, caller.ShopIDs)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, breakdown, shared.RequestID(r))
}

type releasePayload struct {
	EmployeeID       string          `json:"employeeId"`
	Month            string          `json:"month"`
	AdvanceDeduction decimal.Decimal `json:"advanceDeduction"`
	Bonus            decimal.Decimal `json:"bonus"`
	LoanID           string          `json:"loanId"`
	LoanDeduction    decimal.Decimal `json:"loanDeduction"`
	FineAmount       decimal.Decimal `json:"fineAmount"`
	OvertimeBonus    decimal.Decimal `json:"overtimeBonus"`
	OtherDeduction   decimal.Decimal `json:"otherDeduction"`
}

func (h *Handler) handleRelease(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	var payload releasePayload
	if !shared.Decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.UUID("employeeId", payload.EmployeeID)
	v.Required("month", payload.Month, "is required")
	v.NonNegative("advanceDeduction", payload.AdvanceDeduction)
	v.NonNegative("bonus", payload.Bonus)
	v.NonNegative("loanDeduction", payload.LoanDeduction)
	v.NonNegative("fineAmount", payload.FineAmount)
	v.NonNegative("overtimeBonus", payload.OvertimeBonus)
	v.NonNegative("otherDeduction", payload.OtherDeduction)
	if payload.LoanID != "" {
		v.UUID("loanId", payload.LoanID)
	}
	if v.Reject(w, shared.RequestID(r)) {
		return
	}

	release, err := h.Service.Release(r.Context(), payroll.ReleaseRequest{
		EmployeeID:       payload.EmployeeID,
		Month:            payload.Month,
		AdvanceDeduction: payload.AdvanceDeduction,
		Bonus:            payload.Bonus,
		LoanID:           payload.LoanID,
		LoanDeduction:    payload.LoanDeduction,
		FineAmount:       payload.FineAmount,
		OvertimeBonus:    payload.OvertimeBonus,
		OtherDeduction:   payload.OtherDeduction,
	}, caller.ShopIDs, caller.UserID)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Created(w, release, shared.RequestID(r))
}

func (h *Handler) handleListReleases(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	filter := payroll.ReleaseFilter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		Month:      r.URL.Query().Get("month"),
	}
	releases, err := h.Service.ListReleases(r.Context(), caller.ShopIDs, filter, page.Limit, page.Offset)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, releases, shared.RequestID(r))
}

func (h *Handler) handleGetRelease(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	releaseID, ok := shared.IDParam(w, r, "releaseID")
	if !ok {
		return
	}
	release, err := h.Service.GetRelease(r.Context(), releaseID, caller.ShopIDs)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, release, shared.RequestID(r))
}

func (h *Handler) handlePayslip(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	releaseID, ok := shared.IDParam(w, r, "releaseID")
	if !ok {
		return
	}
	pdf, release, err := h.Service.PayslipPDF(r.Context(), releaseID, caller.ShopIDs)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"payslip-%s.pdf\"", release.SalaryMonth))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
