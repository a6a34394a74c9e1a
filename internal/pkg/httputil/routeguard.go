package httputil

import (
	"net/http"
	"strings"

	"github.com/atelier-cms/atelier/internal/pkg/metrics"
	"github.com/atelier-cms/atelier/internal/rbac"
)

// RouteGuardConfig enumerates the protected path prefixes and the redirect
// targets. All values come from configuration, not hard-coded logic.
type RouteGuardConfig struct {
	// ProtectedPrefixes require a valid session and a content-manager role.
	ProtectedPrefixes []string
	// AdminPrefixes additionally require the ADMIN role.
	AdminPrefixes []string
	// LoginPath receives unauthenticated visitors.
	LoginPath string
	// DeniedPath receives authenticated visitors with insufficient role.
	DeniedPath string
}

// RouteDecision is the outcome of the request-time route guard.
type RouteDecision struct {
	Allow    bool
	Redirect string
}

// DecideRoute is the pure (path, session) → decision function behind the
// route guard middleware. Unprotected paths always pass. Session resolution
// failures must be passed in as an unauthenticated state.
func DecideRoute(cfg RouteGuardConfig, path string, state rbac.SessionState) RouteDecision {
	admin := hasPrefix(cfg.AdminPrefixes, path)
	if !admin && !hasPrefix(cfg.ProtectedPrefixes, path) {
		return RouteDecision{Allow: true}
	}

	if !state.Resolved || !state.Authenticated {
		return RouteDecision{Redirect: cfg.LoginPath}
	}

	if admin && !rbac.IsAdmin(state.Role) {
		return RouteDecision{Redirect: cfg.DeniedPath}
	}

	if !rbac.IsManagerOrAdmin(state.Role) {
		return RouteDecision{Redirect: cfg.DeniedPath}
	}

	return RouteDecision{Allow: true}
}

// RouteGuard intercepts page requests under the configured prefixes before
// any handler runs. Unauthenticated visitors are redirected to the login
// path; authenticated visitors without the required role are redirected away
// silently. API routes use AuthMiddleware instead; this guard is for
// browser-rendered paths where a 401 body is the wrong surface.
func RouteGuard(cfg RouteGuardConfig, validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := DecideRoute(cfg, r.URL.Path, resolveState(r, validator))
			if !decision.Allow {
				metrics.AuthzDecisions.WithLabelValues("route", "deny").Inc()
				http.Redirect(w, r, decision.Redirect, http.StatusSeeOther)
				return
			}

			metrics.AuthzDecisions.WithLabelValues("route", "allow").Inc()
			next.ServeHTTP(w, r)
		})
	}
}

// resolveState turns request credentials into a session state. Any
// resolution error collapses to the anonymous state.
func resolveState(r *http.Request, validator TokenValidator) rbac.SessionState {
	token := TokenFromRequest(r)
	if token == "" {
		return rbac.AnonymousSession()
	}

	_, role, err := validator.ValidateToken(r.Context(), token)
	if err != nil {
		return rbac.AnonymousSession()
	}

	return rbac.AuthenticatedSession(role)
}

func hasPrefix(prefixes []string, path string) bool {
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}
