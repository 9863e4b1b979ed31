package payrollhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/payroll"
	"shopledger/internal/transport/http/api"
	"shopledger/internal/transport/http/middleware"
)

const (
	shopID     = "7d0a8c57-5a1e-4c57-9a43-4b1f7c1b9e01"
	employeeID = "1f6e2d3c-4b5a-4978-8695-a4b3c2d1e0f9"
	releaseID  = "0b9c8d7e-6f5a-4b3c-9d2e-1f0a9b8c7d6e"
)

type fakeService struct {
	period   payroll.Period
	released payroll.ReleaseRequest
	releases int
}

func (f *fakeService) Calculate(ctx context.Context, employeeID string, period payroll.Period, shopIDs []string) (payroll.Breakdown, error) {
	f.period = period
	return payroll.Breakdown{EmployeeID: employeeID}, nil
}

func (f *fakeService) Release(ctx context.Context, req payroll.ReleaseRequest, shopIDs []string, actorID string) (payroll.Release, error) {
	f.releases++
	f.released = req
	return payroll.Release{ID: releaseID, EmployeeID: req.EmployeeID, SalaryMonth: req.Month}, nil
}

func (f *fakeService) GetRelease(ctx context.Context, releaseID string, shopIDs []string) (payroll.Release, error) {
	return payroll.Release{}, payroll.ErrReleaseNotFound
}

func (f *fakeService) ListReleases(ctx context.Context, shopIDs []string, filter payroll.ReleaseFilter, limit, offset int) ([]payroll.Release, error) {
	return nil, nil
}

func (f *fakeService) PayslipPDF(ctx context.Context, releaseID string, shopIDs []string) ([]byte, payroll.Release, error) {
	return []byte("%PDF-1.3 payslip"), payroll.Release{ID: releaseID, SalaryMonth: "2024-06"}, nil
}

func serve(h *Handler, role, method, path, body string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	h.RegisterRoutes(router)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithCaller(req.Context(), auth.Caller{UserID: "user-1", Role: role, ShopIDs: []string{shopID}}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) api.Envelope {
	t.Helper()
	var env api.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return env
}

func TestCalculateByMonth(t *testing.T) {
	svc := &fakeService{}
	rec := serve(NewHandler(svc), auth.RoleStaff, http.MethodGet, "/payroll/"+employeeID+"/calculate?month=2024-02", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if svc.period.Month != "2024-02" || svc.period.End.Day() != 29 {
		t.Fatalf("unexpected period: %+v", svc.period)
	}
}

func TestCalculateByRange(t *testing.T) {
	svc := &fakeService{}
	rec := serve(NewHandler(svc), auth.RoleStaff, http.MethodGet, "/payroll/"+employeeID+"/calculate?from=2024-03-10&to=2024-04-05", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if svc.period.Month != "" || svc.period.Start.Month() != time.March || svc.period.End.Day() != 5 {
		t.Fatalf("unexpected period: %+v", svc.period)
	}
}

func TestCalculateRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		path string
		code string
	}{
		{"bad month", "/payroll/" + employeeID + "/calculate?month=2024-13", "invalid_month"},
		{"inverted range", "/payroll/" + employeeID + "/calculate?from=2024-04-05&to=2024-03-10", "invalid_date_range"},
		{"range over a year", "/payroll/" + employeeID + "/calculate?from=1900-01-01&to=9999-12-31", "invalid_date_range"},
		{"missing range", "/payroll/" + employeeID + "/calculate", "validation_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(NewHandler(&fakeService{}), auth.RoleStaff, http.MethodGet, tc.path, "")
			env := decode(t, rec)
			if rec.Code != http.StatusBadRequest || env.Error == nil || env.Error.Code != tc.code {
				t.Fatalf("expected 400 %s, got %d %s", tc.code, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestReleaseRequiresManager(t *testing.T) {
	svc := &fakeService{}
	body := `{"employeeId":"` + employeeID + `","month":"2024-06"}`
	rec := serve(NewHandler(svc), auth.RoleStaff, http.MethodPost, "/payroll/releases", body)
	if rec.Code != http.StatusForbidden || svc.releases != 0 {
		t.Fatalf("expected 403 without a release, got %d", rec.Code)
	}
}

func TestRelease(t *testing.T) {
	svc := &fakeService{}
	body := `{"employeeId":"` + employeeID + `","month":"2024-06","bonus":"250.50","advanceDeduction":"100"}`
	rec := serve(NewHandler(svc), auth.RoleManager, http.MethodPost, "/payroll/releases", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	if !svc.released.Bonus.Equal(decimal.RequireFromString("250.50")) || !svc.released.AdvanceDeduction.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("adjustments not decoded: %+v", svc.released)
	}
}

func TestReleaseValidatesAdjustments(t *testing.T) {
	svc := &fakeService{}
	body := `{"employeeId":"not-a-uuid","month":"2024-06","fineAmount":"-5"}`
	rec := serve(NewHandler(svc), auth.RoleOwner, http.MethodPost, "/payroll/releases", body)
	env := decode(t, rec)
	if rec.Code != http.StatusBadRequest || env.Error.Code != "validation_error" {
		t.Fatalf("expected validation error, got %d %s", rec.Code, rec.Body.String())
	}
	if svc.releases != 0 {
		t.Fatal("service must not be called")
	}
}

func TestGetReleaseNotFound(t *testing.T) {
	rec := serve(NewHandler(&fakeService{}), auth.RoleStaff, http.MethodGet, "/payroll/releases/"+releaseID, "")
	if env := decode(t, rec); rec.Code != http.StatusNotFound || env.Error.Code != "release_not_found" {
		t.Fatalf("expected 404 release_not_found, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestPayslip(t *testing.T) {
	rec := serve(NewHandler(&fakeService{}), auth.RoleStaff, http.MethodGet, "/payroll/releases/"+releaseID+"/payslip", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "payslip-2024-06.pdf") {
		t.Fatalf("unexpected disposition %q", rec.Header().Get("Content-Disposition"))
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Fatal("body is not the rendered pdf")
	}
}
