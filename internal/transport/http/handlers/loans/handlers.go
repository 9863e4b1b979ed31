package loanshandler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/loans"
	"shopledger/internal/transport/http/api"
	"shopledger/internal/transport/http/middleware"
	"shopledger/internal/transport/http/shared"
)

type Service interface {
	CreateLoan(ctx context.Context, req loans.CreateLoanRequest, shopIDs []string, actorID string) (loans.Loan, error)
	RecordPayment(ctx context.Context, req loans.PaymentRequest, shopIDs []string, actorID string) (loans.Loan, loans.Payment, error)
	GetLoan(ctx context.Context, loanID string, shopIDs []string) (loans.Loan, error)
	ListLoans(ctx context.Context, shopIDs []string, filter loans.LoanFilter) ([]loans.Loan, error)
	CreateAdvance(ctx context.Context, req loans.CreateAdvanceRequest, shopIDs []string, actorID string) (loans.Advance, error)
	OutstandingAdvance(ctx context.Context, employeeID string, shopIDs []string) (decimal.Decimal, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	managers := middleware.RequireRole(auth.RoleOwner, auth.RoleManager)
	r.Route("/loans", func(r chi.Router) {
		r.With(managers).Post("/", h.handleCreateLoan)
		r.Get("/", h.handleListLoans)
		r.Get("/{loanID}", h.handleGetLoan)
		r.With(managers).Post("/{loanID}/payments", h.handlePayment)
	})
	r.Route("/advances", func(r chi.Router) {
		r.With(managers).Post("/", h.handleCreateAdvance)
		r.Get("/outstanding", h.handleOutstanding)
	})
}

type loanPayload struct {
	EmployeeID   string          `json:"employeeId"`
	Principal    decimal.Decimal `json:"principal"`
	InterestRate decimal.Decimal `json:"interestRate"`
	MonthlyEMI   decimal.Decimal `json:"monthlyEmi"`
	Notes        string          `json:"notes"`
}

func (h *Handler) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	var payload loanPayload
	if !shared.Decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.UUID("employeeId", payload.EmployeeID)
	v.Positive("principal", payload.Principal)
	v.NonNegative("interestRate", payload.InterestRate)
	v.NonNegative("monthlyEmi", payload.MonthlyEMI)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	loan, err := h.Service.CreateLoan(r.Context(), loans.CreateLoanRequest{
		EmployeeID:   payload.EmployeeID,
		Principal:    payload.Principal,
		InterestRate: payload.InterestRate,
		MonthlyEMI:   payload.MonthlyEMI,
		Notes:        payload.Notes,
	}, caller.ShopIDs, caller.UserID)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Created(w, loan, shared.RequestID(r))
}

func (h *Handler) handleListLoans(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	filter := loans.LoanFilter{
		EmployeeID: r.URL.Query().Get("employeeId"),
		Status:     r.URL.Query().Get("status"),
	}
	items, err := h.Service.ListLoans(r.Context(), caller.ShopIDs, filter)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, items, shared.RequestID(r))
}

func (h *Handler) handleGetLoan(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	loanID, ok := shared.IDParam(w, r, "loanID")
	if !ok {
		return
	}
	loan, err := h.Service.GetLoan(r.Context(), loanID, caller.ShopIDs)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, loan, shared.RequestID(r))
}

type paymentPayload struct {
	Amount decimal.Decimal `json:"amount"`
	PaidOn string          `json:"paidOn"`
}

func (h *Handler) handlePayment(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	loanID, ok := shared.IDParam(w, r, "loanID")
	if !ok {
		return
	}
	var payload paymentPayload
	if !shared.Decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Positive("amount", payload.Amount)
	paidOn := v.OptionalDate("paidOn", payload.PaidOn)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	loan, payment, err := h.Service.RecordPayment(r.Context(), loans.PaymentRequest{
		LoanID: loanID,
		Amount: payload.Amount,
		PaidOn: paidOn,
	}, caller.ShopIDs, caller.UserID)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Created(w, map[string]any{"loan": loan, "payment": payment}, shared.RequestID(r))
}

type advancePayload struct {
	EmployeeID string          `json:"employeeId"`
	Amount     decimal.Decimal `json:"amount"`
	GivenOn    string          `json:"givenOn"`
	Notes      string          `json:"notes"`
}

func (h *Handler) handleCreateAdvance(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	var payload advancePayload
	if !shared.Decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.UUID("employeeId", payload.EmployeeID)
	v.Positive("amount", payload.Amount)
	givenOn := v.OptionalDate("givenOn", payload.GivenOn)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	advance, err := h.Service.CreateAdvance(r.Context(), loans.CreateAdvanceRequest{
		EmployeeID: payload.EmployeeID,
		Amount:     payload.Amount,
		GivenOn:    givenOn,
		Notes:      payload.Notes,
	}, caller.ShopIDs, caller.UserID)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Created(w, advance, shared.RequestID(r))
}

func (h *Handler) handleOutstanding(w http.ResponseWriter, r *http.Request) {
	caller, ok := shared.Caller(w, r)
	if !ok {
		return
	}
	employeeID := r.URL.Query().Get("employeeId")
	v := shared.NewValidator()
	v.UUID("employeeId", employeeID)
	if v.Reject(w, shared.RequestID(r)) {
		return
	}
	total, err := h.Service.OutstandingAdvance(r.Context(), employeeID, caller.ShopIDs)
	if err != nil {
		shared.Fail(w, r, err)
		return
	}
	api.Success(w, map[string]any{"employeeId": employeeID, "outstanding": total}, shared.RequestID(r))
}
