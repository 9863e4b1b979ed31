package notificationshandler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"shopledger/internal/domain/auth"
	"shopledger/internal/domain/notifications"
	"shopledger/internal/transport/http/middleware"
)

const notificationID = "0b9c8d7e-6f5a-4b3c-9d2e-1f0a9b8c7d6e"

type fakeService struct {
	limit, offset int
	listErr       error
	readErr       error
}

func (f *fakeService) List(ctx context.Context, shopIDs []string, limit, offset int) ([]notifications.Notification, error) {
	f.limit, f.offset = limit, offset
	return []notifications.Notification{}, f.listErr
}

func (f *fakeService) MarkRead(ctx context.Context, shopIDs []string, notificationID string) error {
	return f.readErr
}

func serve(svc *fakeService, method, path string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	NewHandler(svc).RegisterRoutes(router)

	req := httptest.NewRequest(method, path, nil)
	req = req.WithContext(middleware.WithCaller(req.Context(), auth.Caller{UserID: "user-1", Role: auth.RoleStaff, ShopIDs: []string{"shop-1"}}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListPaginates(t *testing.T) {
	svc := &fakeService{}
	rec := serve(svc, http.MethodGet, "/notifications?limit=20&page=2")
	if rec.Code != http.StatusOK || svc.limit != 20 || svc.offset != 20 {
		t.Fatalf("unexpected %d limit=%d offset=%d", rec.Code, svc.limit, svc.offset)
	}

	rec = serve(&fakeService{listErr: errors.New("db down")}, http.MethodGet, "/notifications")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestMarkRead(t *testing.T) {
	if rec := serve(&fakeService{}, http.MethodPost, "/notifications/"+notificationID+"/read"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := serve(&fakeService{readErr: notifications.ErrNotificationNotFound}, http.MethodPost, "/notifications/"+notificationID+"/read"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := serve(&fakeService{}, http.MethodPost, "/notifications/nope/read"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
