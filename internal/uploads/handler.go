package uploads

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atelier-cms/atelier/internal/pkg/httputil"
	"github.com/atelier-cms/atelier/internal/rbac"
)

// Handler handles image upload requests.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterManagerRoutes registers the upload endpoint. The route group carries
// the manager middleware; the handler still asserts the guard itself.
func (h *Handler) RegisterManagerRoutes(r chi.Router) {
	r.Post("/admin/uploads", h.Upload)
}

// Upload handles POST /admin/uploads with a multipart "file" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if _, err := rbac.RequireManagerOrAdmin(r.Context()); err != nil {
		httputil.HandleGuardError(w, err)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	upload, err := h.service.Store(r.Context(), file)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, upload)
}

func (h *Handler) handleServiceError(r *http.Request, w http.ResponseWriter, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrUnsupportedType, Status: http.StatusUnsupportedMediaType},
		{Error: ErrFileTooLarge, Status: http.StatusRequestEntityTooLarge},
		{Error: ErrEmptyFile, Status: http.StatusBadRequest},
	})
}
