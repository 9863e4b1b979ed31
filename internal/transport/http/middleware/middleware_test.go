package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shopledger/internal/domain/auth"
	"shopledger/internal/requestctx"
	"shopledger/internal/transport/http/api"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env api.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	return env.Error.Code
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen requestctx.Meta
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestctx.From(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen.RequestID == "" || rec.Header().Get("X-Request-ID") != seen.RequestID {
		t.Fatalf("expected request id in context and header, got %q / %q", seen.RequestID, rec.Header().Get("X-Request-ID"))
	}
	if seen.ClientIP != "203.0.113.5" {
		t.Fatalf("expected forwarded client ip, got %q", seen.ClientIP)
	}
}

func TestRequestIDReplacesMalformedHeader(t *testing.T) {
	handler := RequestID(http.HandlerFunc(okHandler))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "not\na-uuid")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got == "not\na-uuid" || got == "" {
		t.Fatalf("expected generated id, got %q", got)
	}
}

func TestAuthMiddlewareSetsCaller(t *testing.T) {
	secret := "test-secret"
	token, err := auth.GenerateToken(secret, auth.Claims{UserID: "u1", Role: auth.RoleManager, ShopIDs: []string{"shop-1"}}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	called := false
	handler := Auth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		caller, ok := GetCaller(r.Context())
		if !ok || caller.UserID != "u1" || !caller.CanAccess("shop-1") {
			t.Fatalf("unexpected caller %+v", caller)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Fatal("handler was not reached")
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	handler := Auth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	cases := map[string]string{
		"missing":      "",
		"wrong scheme": "Basic abc",
		"bad token":    "Bearer not-a-jwt",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(auth.RoleOwner, auth.RoleManager)(http.HandlerFunc(okHandler))

	staffReq := httptest.NewRequest(http.MethodPost, "/", nil)
	staffReq = staffReq.WithContext(WithCaller(staffReq.Context(), auth.Caller{UserID: "u2", Role: auth.RoleStaff}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, staffReq)
	if rec.Code != http.StatusForbidden || errorCode(t, rec) != "forbidden" {
		t.Fatalf("expected 403 forbidden, got %d", rec.Code)
	}

	ownerReq := httptest.NewRequest(http.MethodPost, "/", nil)
	ownerReq = ownerReq.WithContext(WithCaller(ownerReq.Context(), auth.Caller{UserID: "u1", Role: auth.RoleOwner}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, ownerReq)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected owner through, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without caller, got %d", rec.Code)
	}
}

type recorded struct {
	statuses []int
}

func (r *recorded) Record(status int, _ time.Duration) {
	r.statuses = append(r.statuses, status)
}

func TestLoggerRecordsStatus(t *testing.T) {
	metrics := &recorded{}
	handler := Logger(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if len(metrics.statuses) != 1 || metrics.statuses[0] != http.StatusConflict {
		t.Fatalf("expected 409 recorded, got %v", metrics.statuses)
	}
}

func TestBodyLimitRejectsDeclaredOversize(t *testing.T) {
	handler := BodyLimit(1024)(http.HandlerFunc(okHandler))
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.ContentLength = 4096
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}

func TestWriteRateLimitPerCaller(t *testing.T) {
	handler := WriteRateLimit(1, time.Minute)(http.HandlerFunc(okHandler))
	send := func(method, user, addr string) int {
		req := httptest.NewRequest(method, "/api/v1/orders", nil)
		req.RemoteAddr = addr
		if user != "" {
			req = req.WithContext(WithCaller(req.Context(), auth.Caller{UserID: user}))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := send(http.MethodPost, "u1", "198.51.100.1:1000"); got != http.StatusNoContent {
		t.Fatalf("first write should pass, got %d", got)
	}
	if got := send(http.MethodPost, "u1", "198.51.100.2:2000"); got != http.StatusTooManyRequests {
		t.Fatalf("second write by same user should be throttled, got %d", got)
	}
	if got := send(http.MethodGet, "u1", "198.51.100.2:2000"); got != http.StatusNoContent {
		t.Fatalf("reads are not throttled, got %d", got)
	}
	if got := send(http.MethodPost, "u2", "198.51.100.2:2000"); got != http.StatusNoContent {
		t.Fatalf("another user has its own bucket, got %d", got)
	}
}

func TestRequestHashDeterministic(t *testing.T) {
	if RequestHash([]byte("payload")) != RequestHash([]byte("payload")) {
		t.Fatal("expected deterministic hash")
	}
	if RequestHash([]byte("payload")) == RequestHash([]byte("other")) {
		t.Fatal("expected different hash for different payload")
	}
	if RequestHash([]byte(`{"a": 1,  "b": [2]}`)) != RequestHash([]byte(`{"a":1,"b":[2]}`)) {
		t.Fatal("whitespace must not change the hash")
	}
}

func TestKeyFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/orders", nil)
	if _, ok := KeyFromRequest(r, "s1", "u1", "orders.create", []byte(`{}`)); ok {
		t.Fatal("no header means no key")
	}
	r.Header.Set(IdempotencyHeader, " abc ")
	k, ok := KeyFromRequest(r, "s1", "u1", "orders.create", []byte(`{}`))
	if !ok || k.Key != "abc" || k.ShopID != "s1" || k.Hash != RequestHash([]byte(`{}`)) {
		t.Fatalf("unexpected key %+v", k)
	}
}

func TestSecureHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecureHeaders(true)(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" || rec.Header().Get("Strict-Transport-Security") == "" {
		t.Fatalf("missing security headers: %v", rec.Header())
	}

	rec = httptest.NewRecorder()
	SecureHeaders(false)(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("Strict-Transport-Security") != "" || rec.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("unexpected non-production headers: %v", rec.Header())
	}
}
