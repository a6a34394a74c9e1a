package rbac

import "github.com/atelier-cms/atelier/internal/domain"

// SessionState is the UI-facing view of the resolved session. Resolved=false
// means resolution has not completed yet (loading), which is distinct from a
// resolved-but-anonymous session.
type SessionState struct {
	Resolved      bool
	Authenticated bool
	Role          domain.Role
}

// AnonymousSession is a resolved session with no user. Resolution failures
// collapse to this state so guards fail closed.
func AnonymousSession() SessionState {
	return SessionState{Resolved: true, Authenticated: false, Role: domain.RoleUser}
}

// AuthenticatedSession builds a resolved session for a role, defaulting an
// absent role to USER.
func AuthenticatedSession(role domain.Role) SessionState {
	if !role.IsValid() {
		role = domain.RoleUser
	}
	return SessionState{Resolved: true, Authenticated: true, Role: role}
}

// PageDecision is the outcome of the page-level guard.
type PageDecision int

const (
	// PageLoading — session not yet resolved; render a non-terminal loading state.
	PageLoading PageDecision = iota
	// PageRedirectLogin — unauthenticated and no fallback content.
	PageRedirectLogin
	// PageFallback — render the provided fallback content.
	PageFallback
	// PageUnauthorized — authenticated but insufficient; render a placeholder.
	PageUnauthorized
	// PageRender — render the wrapped subtree.
	PageRender
)

// GuardPage applies the page-level decision table. Defense in depth only:
// route middleware and server guards remain the authoritative layers.
func GuardPage(state SessionState, requireAdmin, hasFallback bool) PageDecision {
	if !state.Resolved {
		return PageLoading
	}
	if !state.Authenticated {
		if hasFallback {
			return PageFallback
		}
		return PageRedirectLogin
	}
	if requireAdmin && !IsAdmin(state.Role) {
		if hasFallback {
			return PageFallback
		}
		return PageUnauthorized
	}
	return PageRender
}

// GuardGate decides whether an inline fragment is shown. Same table as
// GuardPage minus any redirect behavior; pure in its inputs so gates nest
// freely.
func GuardGate(state SessionState, requireAdmin bool) bool {
	if !state.Resolved || !state.Authenticated {
		return false
	}
	if requireAdmin {
		return IsAdmin(state.Role)
	}
	return true
}

// GuardGatePermission shows a fragment only when the role grants a
// permission string.
func GuardGatePermission(state SessionState, permission string) bool {
	if !state.Resolved || !state.Authenticated {
		return false
	}
	return HasPermission(state.Role, permission)
}
