package rbac

import (
	"context"

	"github.com/atelier-cms/atelier/internal/domain"
)

// Principal is the authenticated actor for the current request.
type Principal struct {
	UserID string
	Role   domain.Role
}

type principalKey struct{}

// WithPrincipal stores the authenticated principal in the context. The role
// is re-validated here so a corrupted value degrades to USER, never up.
func WithPrincipal(ctx context.Context, userID string, role domain.Role) context.Context {
	if !role.IsValid() {
		role = domain.RoleUser
	}
	return context.WithValue(ctx, principalKey{}, Principal{UserID: userID, Role: role})
}

// PrincipalFromContext returns the principal and whether one is present.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// UserID returns the authenticated user ID, or "" when unauthenticated.
func UserID(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.UserID
}

// RoleFromContext returns the principal's role, defaulting to USER.
func RoleFromContext(ctx context.Context) domain.Role {
	if p, ok := PrincipalFromContext(ctx); ok {
		return p.Role
	}
	return domain.RoleUser
}
