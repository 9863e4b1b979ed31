package leavehandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/leave"
	"shopledger/internal/transport/http/api"
	"shopledger/internal/transport/http/middleware"
)

const (
	shopID     = "7d0a8c57-5a1e-4c57-9a43-4b1f7c1b9e01"
	employeeID = "1f6e2d3c-4b5a-4978-8695-a4b3c2d1e0f9"
	requestID  = "0b9c8d7e-6f5a-4b3c-9d2e-1f0a9b8c7d6e"
)

type fakeService struct {
	created  leave.CreateRequest
	holiday  leave.HolidayRequest
	decision string
	err      error
}

func (f *fakeService) Create(ctx context.Context, req leave.CreateRequest, shopIDs []string) (leave.Request, error) {
	f.created = req
	return leave.Request{EmployeeID: req.EmployeeID, Status: leave.StatusPending}, nil
}

func (f *fakeService) Decide(ctx context.Context, requestID, decision string, shopIDs []string, approverID string) (leave.Request, error) {
	f.decision = decision
	if f.err != nil {
		return leave.Request{}, f.err
	}
	return leave.Request{ID: requestID, Status: decision, ApproverID: approverID}, nil
}

func (f *fakeService) ListRequests(ctx context.Context, shopIDs []string, filter leave.RequestFilter) ([]leave.Request, error) {
	return []leave.Request{}, nil
}

func (f *fakeService) CreateHoliday(ctx context.Context, req leave.HolidayRequest, shopIDs []string, actorID string) (leave.Holiday, error) {
	f.holiday = req
	return leave.Holiday{ShopID: req.ShopID, StartDate: req.StartDate, EndDate: req.EndDate}, f.err
}

func (f *fakeService) DeleteHoliday(ctx context.Context, holidayID string, shopIDs []string, actorID string) error {
	return f.err
}

func (f *fakeService) ListHolidays(ctx context.Context, shopID string, shopIDs []string, from, to time.Time) ([]leave.Holiday, error) {
	return []leave.Holiday{}, nil
}

func serve(t *testing.T, svc *fakeService, role, method, path, body string) (*httptest.ResponseRecorder, api.Envelope) {
	t.Helper()
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	NewHandler(svc).RegisterRoutes(router)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithCaller(req.Context(), auth.Caller{UserID: "user-1", Role: role, ShopIDs: []string{shopID}}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env api.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return rec, env
}

func TestCreateRequest(t *testing.T) {
	svc := &fakeService{}
	body := `{"employeeId":"` + employeeID + `","startDate":"2024-06-10","endDate":"2024-06-12","leaveType":"sick"}`
	rec, _ := serve(t, svc, auth.RoleStaff, http.MethodPost, "/leave/requests", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	if svc.created.LeaveType != "sick" || svc.created.EndDate.Day() != 12 {
		t.Fatalf("unexpected request %+v", svc.created)
	}

	body = `{"employeeId":"` + employeeID + `","startDate":"2024-06-12","endDate":"2024-06-10"}`
	rec, env := serve(t, &fakeService{}, auth.RoleStaff, http.MethodPost, "/leave/requests", body)
	if rec.Code != http.StatusBadRequest || env.Error.Code != "validation_error" {
		t.Fatalf("expected validation error, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestDecide(t *testing.T) {
	path := "/leave/requests/" + requestID + "/decision"

	rec, _ := serve(t, &fakeService{}, auth.RoleStaff, http.MethodPost, path, `{"decision":"approved"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("staff must not decide, got %d", rec.Code)
	}

	svc := &fakeService{}
	rec, _ = serve(t, svc, auth.RoleManager, http.MethodPost, path, `{"decision":"approved"}`)
	if rec.Code != http.StatusOK || svc.decision != leave.StatusApproved {
		t.Fatalf("expected approval, got %d %s", rec.Code, rec.Body.String())
	}

	rec, env := serve(t, &fakeService{}, auth.RoleManager, http.MethodPost, path, `{"decision":"maybe"}`)
	if rec.Code != http.StatusBadRequest || env.Error.Code != "validation_error" {
		t.Fatalf("expected validation error, got %d", rec.Code)
	}

	rec, env = serve(t, &fakeService{err: leave.ErrAlreadyDecided}, auth.RoleOwner, http.MethodPost, path, `{"decision":"rejected"}`)
	if rec.Code != http.StatusConflict || env.Error.Code != "already_decided" {
		t.Fatalf("expected 409, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestCreateHolidayDefaultsToOneDay(t *testing.T) {
	svc := &fakeService{}
	rec, _ := serve(t, svc, auth.RoleOwner, http.MethodPost, "/holidays", `{"shopId":"`+shopID+`","startDate":"2024-12-16","description":"Victory Day"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	if !svc.holiday.StartDate.Equal(svc.holiday.EndDate) {
		t.Fatalf("single-day holiday expected, got %+v", svc.holiday)
	}
}

func TestHolidayRules(t *testing.T) {
	rec, env := serve(t, &fakeService{}, auth.RoleOwner, http.MethodGet, "/holidays", "")
	if rec.Code != http.StatusBadRequest || env.Error.Code != "validation_error" {
		t.Fatalf("shopId is required, got %d", rec.Code)
	}

	rec, env = serve(t, &fakeService{err: leave.ErrInvalidShop}, auth.RoleOwner, http.MethodPost, "/holidays", `{"shopId":"other","startDate":"2024-12-16","description":"x"}`)
	if rec.Code != http.StatusForbidden || env.Error.Code != "invalid_shop" {
		t.Fatalf("expected 403, got %d %s", rec.Code, rec.Body.String())
	}

	rec, env = serve(t, &fakeService{err: leave.ErrHolidayNotFound}, auth.RoleOwner, http.MethodDelete, "/holidays/"+requestID, "")
	if rec.Code != http.StatusNotFound || env.Error.Code != "holiday_not_found" {
		t.Fatalf("expected 404, got %d %s", rec.Code, rec.Body.String())
	}
}
