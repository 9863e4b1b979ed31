package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shopledger/internal/domain/auth"
	"shopledger/internal/transport/http/api"
	"shopledger/internal/transport/http/middleware"
)

// Caller returns the authenticated caller or writes 401.
func Caller(w http.ResponseWriter, r *http.Request) (auth.Caller, bool) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return auth.Caller{}, false
	}
	return caller, true
}

// Decode reads a JSON body into dst, writing 400 (or 413) on failure.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", middleware.GetRequestID(r.Context()))
			return false
		}
		if errors.Is(err, io.EOF) {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "request body is required", middleware.GetRequestID(r.Context()))
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

// IDParam reads a UUID path parameter, writing 400 when it is malformed.
func IDParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := chi.URLParam(r, name)
	if _, err := uuid.Parse(raw); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", name+" must be a valid id", middleware.GetRequestID(r.Context()))
		return "", false
	}
	return raw, true
}

// Fail writes err through the domain error table.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	api.FailFromError(w, err, middleware.GetRequestID(r.Context()))
}

func RequestID(r *http.Request) string {
	return middleware.GetRequestID(r.Context())
}
