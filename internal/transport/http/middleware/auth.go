package middleware

import (
	"context"
	"net/http"
	"strings"

	"shopledger/internal/domain/auth"
	"shopledger/internal/transport/http/api"
)

type ctxKey string

const ctxKeyCaller ctxKey = "caller"

// Auth requires a valid bearer token and stores the resolved caller in the context.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}

			claims, err := auth.ParseToken(secret, strings.TrimSpace(token))
			if err != nil {
				api.Fail(w, http.StatusUnauthorized, "invalid_token", "invalid or expired token", GetRequestID(r.Context()))
				return
			}

			ctx := WithCaller(r.Context(), auth.FromClaims(claims))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithCaller(ctx context.Context, caller auth.Caller) context.Context {
	return context.WithValue(ctx, ctxKeyCaller, caller)
}

func GetCaller(ctx context.Context) (auth.Caller, bool) {
	caller, ok := ctx.Value(ctxKeyCaller).(auth.Caller)
	return caller, ok
}
