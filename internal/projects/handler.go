package projects

import (
	"encoding/json"
	"net/http"

	"github.com/atelier-cms/atelier/internal/pkg/httputil"
	"github.com/atelier-cms/atelier/internal/rbac"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// Handler handles HTTP requests for the projects module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new projects handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterPublicRoutes registers the unauthenticated read surface consumed
// by the marketing site.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/projects", h.ListPublic)
	r.Get("/projects/{slug}", h.GetPublic)
}

// RegisterManagerRoutes registers content-management routes. The route group
// carries the manager middleware; each mutating handler still asserts the
// guard itself before touching persistence.
func (h *Handler) RegisterManagerRoutes(r chi.Router) {
	r.Route("/admin/projects", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/reorder", h.Reorder)
		r.Get("/{slug}", h.Get)
		r.Patch("/{slug}", h.Update)
		r.Delete("/{slug}", h.Delete)
		r.Post("/{slug}/activate", h.Activate)
		r.Post("/{slug}/deactivate", h.Deactivate)
	})
}

// CreateRequest represents the request body for creating a project.
type CreateRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Slug        string  `json:"slug" validate:"omitempty,min=1,max=255"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url" validate:"omitempty,max=1024"`
	Link        *string `json:"link" validate:"omitempty,url"`
	Active      bool    `json:"active"`
}

// UpdateRequest represents the request body for updating a project.
type UpdateRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Slug        string  `json:"slug" validate:"omitempty,min=1,max=255"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url" validate:"omitempty,max=1024"`
	Link        *string `json:"link" validate:"omitempty,url"`
	Active      bool    `json:"active"`
	Position    int     `json:"position" validate:"min=0"`
}

// ReorderRequest represents the request body for reordering projects.
type ReorderRequest struct {
	ProjectIDs []string `json:"project_ids" validate:"required,min=1"`
}

// ListPublic handles GET /projects: active projects in display order.
func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), Filter{ActiveOnly: true})
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, list)
}

// GetPublic handles GET /projects/{slug}.
func (h *Handler) GetPublic(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	project, err := h.service.GetActiveBySlug(r.Context(), slug)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, project)
}

// List handles GET /admin/projects: all projects including unpublished.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := rbac.RequireManagerOrAdmin(r.Context()); err != nil {
		httputil.HandleGuardError(w, err)
		return
	}

	list, err := h.service.List(r.Context(), Filter{})
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, list)
}

// Get handles GET /admin/projects/{slug}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if _, err := rbac.RequireManagerOrAdmin(r.Context()); err != nil {
		httputil.HandleGuardError(w, err)
		return
	}

	project, err := h.service.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, project)
}

// Create handles POST /admin/projects.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if _, err := rbac.RequireManagerOrAdmin(r.Context()); err != nil {
		httputil.HandleGuardError(w, err)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	project, err := h.service.Create(r.Context(), CreateInput(req))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, project)
}

// Update handles PATCH /admin/projects/{slug}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if _, err := rbac.RequireManagerOrAdmin(r.Context()); err != nil {
		httputil.HandleGuardError(w, err)
		return
	}

	existing, err := h.service.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	project, err := h.service.Update(r.Context(), existing.ID, UpdateInput(req))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, project)
}

// Delete handles DELETE /admin/projects/{slug}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, err := rbac.RequireManagerOrAdmin(r.Context()); err != nil {
		httputil.HandleGuardError(w, err)
		return
	}

	project, err := h.service.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	if err := h.service.Delete(r.Context(), project.ID); err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Activate handles POST /admin/projects/{slug}/activate.
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate handles POST /admin/projects/{slug}/deactivate.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	if _, err := rbac.RequireManagerOrAdmin(r.Context()); err != nil {
		httputil.HandleGuardError(w, err)
		return
	}

	project, err := h.service.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	if err := h.service.SetActive(r.Context(), project.ID, active); err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	project.Active = active
	httputil.Success(w, http.StatusOK, project)
}

// Reorder handles PUT /admin/projects/reorder.
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	if _, err := rbac.RequireManagerOrAdmin(r.Context()); err != nil {
		httputil.HandleGuardError(w, err)
		return
	}

	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	if err := h.service.Reorder(r.Context(), req.ProjectIDs); err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	list, err := h.service.List(r.Context(), Filter{})
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, list)
}

func (h *Handler) handleServiceError(r *http.Request, w http.ResponseWriter, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrProjectNotFound, Status: http.StatusNotFound},
		{Error: ErrSlugExists, Status: http.StatusConflict},
		{Error: ErrInvalidSlug, Status: http.StatusBadRequest},
		{Error: ErrInvalidOrder, Status: http.StatusBadRequest},
	})
}
