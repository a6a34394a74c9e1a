package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/atelier-cms/atelier/internal/pkg/ctxlog"
	"github.com/atelier-cms/atelier/internal/rbac"
)

// ErrorMapping defines how a domain error maps to an HTTP response.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string // if empty, uses err.Error()
}

// HandleError maps a domain error to an HTTP response using provided
// mappings. Guard errors are always mapped, so handlers translating
// rbac failures need no per-handler cases for them. If nothing matches,
// logs the error and returns 500 Internal Server Error.
func HandleError(ctx context.Context, w http.ResponseWriter, err error, mappings []ErrorMapping) {
	for _, m := range mappings {
		if errors.Is(err, m.Error) {
			msg := m.Message
			if msg == "" {
				msg = err.Error()
			}
			Error(w, m.Status, msg)
			return
		}
	}

	if HandleGuardError(w, err) {
		return
	}

	ctxlog.FromContext(ctx).Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, "internal error")
}

// HandleGuardError writes the response for a guard failure and reports
// whether err was one. 401 for missing sessions, 403 for insufficient role.
func HandleGuardError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, rbac.ErrUnauthenticated):
		Error(w, http.StatusUnauthorized, "unauthorized")
		return true
	case errors.Is(err, rbac.ErrForbidden):
		Error(w, http.StatusForbidden, "insufficient permissions")
		return true
	}
	return false
}
