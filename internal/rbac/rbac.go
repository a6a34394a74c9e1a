// Package rbac is the single source of truth for role-based authorization.
// Every enforcement point (route middleware, server guards, page/component
// gates) derives its decision from the tables and predicates defined here.
package rbac

import "github.com/atelier-cms/atelier/internal/domain"

// Permission strings follow the resource:action form. The vocabulary is
// closed; extending it means updating the allow-lists below together.
const (
	PermAgendaRead       = "agenda:read"
	PermAgendaCreate     = "agenda:create"
	PermAgendaUpdate     = "agenda:update"
	PermAgendaDelete     = "agenda:delete"
	PermProfileReadOwn   = "profile:read_own"
	PermProfileUpdateOwn = "profile:update_own"
)

// userPermissions is the USER allow-list.
var userPermissions = []string{
	PermAgendaRead,
	PermProfileReadOwn,
	PermProfileUpdateOwn,
}

// managerPermissions extends the USER list, so the superset property holds
// by construction rather than by runtime check.
var managerPermissions = append([]string{
	PermAgendaCreate,
	PermAgendaUpdate,
	PermAgendaDelete,
}, userPermissions...)

var rolePermissions = map[domain.Role][]string{
	domain.RoleUser:    userPermissions,
	domain.RoleManager: managerPermissions,
}

// ParseRole validates an untyped role value at the session-resolution
// boundary. Unknown or empty values fall back to USER (least privilege).
func ParseRole(raw string) domain.Role {
	role := domain.Role(raw)
	if !role.IsValid() {
		return domain.RoleUser
	}
	return role
}

// IsAdmin reports whether the role is ADMIN.
func IsAdmin(role domain.Role) bool {
	return role == domain.RoleAdmin
}

// IsManagerOrAdmin reports whether the role may manage content.
func IsManagerOrAdmin(role domain.Role) bool {
	return role == domain.RoleManager || role == domain.RoleAdmin
}

// HasPermission reports whether the role grants the permission. ADMIN is
// permission-universal; other roles are checked against their allow-list.
// Total over every role and every string, never panics.
func HasPermission(role domain.Role, permission string) bool {
	if role == domain.RoleAdmin {
		return true
	}
	for _, p := range rolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// Permissions returns the explicit allow-list for a role. ADMIN returns the
// full vocabulary so clients can enumerate capabilities.
func Permissions(role domain.Role) []string {
	if role == domain.RoleAdmin {
		return []string{
			PermAgendaRead,
			PermAgendaCreate,
			PermAgendaUpdate,
			PermAgendaDelete,
			PermProfileReadOwn,
			PermProfileUpdateOwn,
		}
	}
	perms := rolePermissions[role]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}
