package rbac

import (
	"context"
	"errors"
)

// Guard failure taxonomy. Handlers translate these into 401/403; they must
// not leak past the HTTP boundary into business logic.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// RequireAuth returns the authenticated principal, or ErrUnauthenticated.
// It is the first call in every mutating handler; no persistence operation
// may start before it returns.
func RequireAuth(ctx context.Context) (Principal, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok || p.UserID == "" {
		return Principal{}, ErrUnauthenticated
	}
	return p, nil
}

// RequireManagerOrAdmin asserts the caller may manage content.
func RequireManagerOrAdmin(ctx context.Context) (Principal, error) {
	p, err := RequireAuth(ctx)
	if err != nil {
		return Principal{}, err
	}
	if !IsManagerOrAdmin(p.Role) {
		return Principal{}, ErrForbidden
	}
	return p, nil
}

// RequireAdmin asserts the caller holds the ADMIN role.
func RequireAdmin(ctx context.Context) (Principal, error) {
	p, err := RequireAuth(ctx)
	if err != nil {
		return Principal{}, err
	}
	if !IsAdmin(p.Role) {
		return Principal{}, ErrForbidden
	}
	return p, nil
}

// RequirePermission asserts the caller's role grants a permission string.
func RequirePermission(ctx context.Context, permission string) (Principal, error) {
	p, err := RequireAuth(ctx)
	if err != nil {
		return Principal{}, err
	}
	if !HasPermission(p.Role, permission) {
		return Principal{}, ErrForbidden
	}
	return p, nil
}
