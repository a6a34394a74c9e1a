package httputil

import (
	"context"
	"net/http"
	"strings"

	"github.com/atelier-cms/atelier/internal/domain"
	"github.com/atelier-cms/atelier/internal/pkg/metrics"
	"github.com/atelier-cms/atelier/internal/rbac"
)

// Cookie names used for browser sessions.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	CSRFTokenCookie    = "csrf_token"
)

// CSRFTokenHeader carries the double-submit CSRF token on mutating requests.
const CSRFTokenHeader = "X-CSRF-Token"

// CORSMiddleware creates CORS middleware that handles preflight requests
// and adds appropriate CORS headers to responses.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	originsSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originsSet[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if originsSet[origin] || originsSet["*"] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+CSRFTokenHeader)
				w.Header().Set("Access-Control-Max-Age", "86400")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CSRFMiddleware enforces double-submit CSRF protection for cookie-based
// sessions on state-changing methods. Requests authenticated via the
// Authorization header carry no ambient credentials and are exempt.
func CSRFMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isStateChanging(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		if _, err := r.Cookie(AccessTokenCookie); err != nil {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(CSRFTokenCookie)
		if err != nil || cookie.Value == "" || r.Header.Get(CSRFTokenHeader) != cookie.Value {
			Error(w, http.StatusForbidden, "invalid csrf token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isStateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// TokenValidator resolves request credentials into an authenticated user.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (userID string, role domain.Role, err error)
}

// TokenFromRequest extracts the access token from the session cookie or the
// Authorization header. Returns "" when no credentials are present.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}

	return ""
}

// AuthMiddleware creates authentication middleware for API routes. A missing
// or invalid token terminates the request with 401; validation errors are
// treated exactly like absent credentials (fail closed).
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				metrics.AuthzDecisions.WithLabelValues("auth", "deny").Inc()
				Error(w, http.StatusUnauthorized, "missing credentials")
				return
			}

			userID, role, err := validator.ValidateToken(r.Context(), token)
			if err != nil {
				metrics.AuthzDecisions.WithLabelValues("auth", "deny").Inc()
				Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			metrics.AuthzDecisions.WithLabelValues("auth", "allow").Inc()
			ctx := rbac.WithPrincipal(r.Context(), userID, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireManagerOrAdmin rejects requests whose principal cannot manage
// content. Must run inside AuthMiddleware.
func RequireManagerOrAdmin(next http.Handler) http.Handler {
	return requireRole(next, rbac.IsManagerOrAdmin)
}

// RequireAdmin rejects requests whose principal is not an admin.
func RequireAdmin(next http.Handler) http.Handler {
	return requireRole(next, rbac.IsAdmin)
}

func requireRole(next http.Handler, allowed func(domain.Role) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := rbac.PrincipalFromContext(r.Context())
		if !ok {
			metrics.AuthzDecisions.WithLabelValues("role", "deny").Inc()
			Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if !allowed(p.Role) {
			metrics.AuthzDecisions.WithLabelValues("role", "deny").Inc()
			Error(w, http.StatusForbidden, "insufficient permissions")
			return
		}

		metrics.AuthzDecisions.WithLabelValues("role", "allow").Inc()
		next.ServeHTTP(w, r)
	})
}
