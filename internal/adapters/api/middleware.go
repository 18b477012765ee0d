package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/poyrazK/dnskitchen/internal/core/domain"
	"github.com/poyrazK/dnskitchen/internal/infrastructure/metrics"
)

type contextKey string

const CtxPrincipal contextKey = "principal"

// PrincipalFrom returns the principal stored by AuthMiddleware.
func PrincipalFrom(ctx context.Context) (*domain.Principal, bool) {
	p, ok := ctx.Value(CtxPrincipal).(*domain.Principal)
	return p, ok
}

// AuthMiddleware verifies the bearer id token. A missing token is 401, a
// token that fails verification is 403.
func AuthMiddleware(verifier *TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") || raw == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or invalid authorization header"})
				return
			}

			principal, err := verifier.Verify(raw)
			if err != nil {
				writeJSON(w, http.StatusForbidden, errorResponse{Error: "invalid id token"})
				return
			}

			ctx := context.WithValue(r.Context(), CtxPrincipal, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole admits principals holding "{namespace}/{role}" for one of
// roles, namespace being the route parameter.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			namespace := chi.URLParam(r, "namespace")
			if namespace == "" {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "namespace (tenant) not supplied", Field: "namespace"})
				return
			}
			principal, ok := PrincipalFrom(r.Context())
			if !ok {
				writeJSON(w, http.StatusForbidden, errorResponse{Error: "Forbidden: principal not found in context"})
				return
			}
			if !principal.HasRole(namespace, roles...) {
				writeJSON(w, http.StatusForbidden, errorResponse{Error: "Forbidden: insufficient permissions"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MetricsMiddleware counts requests by route pattern and status.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// RateLimitMiddleware rejects clients exceeding their per-IP budget with 429.
func RateLimitMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(clientIP(r)) {
				w.Header().Set("Retry-After", "1")
				writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
