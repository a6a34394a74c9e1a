package users

import (
	"encoding/json"
	"net/http"

	"github.com/atelier-cms/atelier/internal/pkg/httputil"
	"github.com/atelier-cms/atelier/internal/rbac"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for the users module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new users handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterAdminRoutes registers user administration routes. The group is
// mounted behind the admin middleware; handlers assert RequireAdmin again
// before any mutation.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}/role", h.ChangeRole)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles GET /admin/users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := rbac.RequireAdmin(r.Context()); err != nil {
		httputil.HandleGuardError(w, err)
		return
	}

	list, err := h.service.List(r.Context())
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, list)
}

// Get handles GET /admin/users/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if _, err := rbac.RequireAdmin(r.Context()); err != nil {
		httputil.HandleGuardError(w, err)
		return
	}

	user, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, user)
}

// ChangeRoleRequest represents the role change request body.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user manager admin"`
}

// ChangeRole handles PATCH /admin/users/{id}/role.
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	p, err := rbac.RequireAdmin(r.Context())
	if err != nil {
		httputil.HandleGuardError(w, err)
		return
	}

	var req ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, err := h.service.ChangeRole(r.Context(), p.UserID, chi.URLParam(r, "id"), rbac.ParseRole(req.Role))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, user)
}

// Delete handles DELETE /admin/users/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := rbac.RequireAdmin(r.Context())
	if err != nil {
		httputil.HandleGuardError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), p.UserID, chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(r *http.Request, w http.ResponseWriter, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrUserNotFound, Status: http.StatusNotFound},
		{Error: ErrInvalidRole, Status: http.StatusBadRequest},
		{Error: ErrOwnAccount, Status: http.StatusConflict},
		{Error: ErrLastAdmin, Status: http.StatusConflict},
	})
}
