package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atelier-cms/atelier/internal/identity"
	"github.com/atelier-cms/atelier/internal/pkg/ctxlog"
	"github.com/atelier-cms/atelier/internal/pkg/httputil"
	"github.com/atelier-cms/atelier/internal/pkg/metrics"
	"github.com/atelier-cms/atelier/internal/projects"
	"github.com/atelier-cms/atelier/internal/rbac"
	"github.com/atelier-cms/atelier/internal/users"
)

// Handler serves the browser-facing pages. The route guard middleware has
// already screened these paths; each page re-runs the page-level decision
// table with its own session resolution so a rendered page never leaks
// content past what the guard allows.
type Handler struct {
	engine    *Engine
	validator httputil.TokenValidator
	identity  *identity.Service
	projects  *projects.Service
	users     *users.Service
	loginPath string
}

func NewHandler(engine *Engine, identityService *identity.Service, projectService *projects.Service, userService *users.Service, loginPath string) *Handler {
	return &Handler{
		engine:    engine,
		validator: identityService,
		identity:  identityService,
		projects:  projectService,
		users:     userService,
		loginPath: loginPath,
	}
}

// RegisterRoutes mounts the page routes on the root router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/work/{slug}", h.Work)
	r.Get("/login", h.Login)
	r.Get("/profile", h.Profile)
	r.Get("/admin", h.Dashboard)
	r.Get("/admin/projects", h.Projects)
	r.Get("/admin/projects/new", h.ProjectNew)
	r.Get("/admin/projects/{slug}/edit", h.ProjectEdit)
	r.Get("/admin/users", h.Users)
}

// session resolves the request credentials into a UI session state. Any
// validation failure collapses to anonymous.
func (h *Handler) session(r *http.Request) rbac.SessionState {
	_, state := h.sessionUser(r)
	return state
}

func (h *Handler) sessionUser(r *http.Request) (string, rbac.SessionState) {
	token := httputil.TokenFromRequest(r)
	if token == "" {
		return "", rbac.AnonymousSession()
	}
	userID, role, err := h.validator.ValidateToken(r.Context(), token)
	if err != nil {
		return "", rbac.AnonymousSession()
	}
	return userID, rbac.AuthenticatedSession(role)
}

// Home renders the public showcase of active projects.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	list, err := h.projects.List(r.Context(), projects.Filter{ActiveOnly: true})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, "home.html", PageData{
		Title:   "Atelier",
		Path:    "/",
		Session: h.session(r),
		Data:    list,
	})
}

// Work renders a single published project.
func (h *Handler) Work(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.GetActiveBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, projects.ErrProjectNotFound) {
			http.NotFound(w, r)
			return
		}
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, "work.html", PageData{
		Title:   project.Title,
		Path:    r.URL.Path,
		Session: h.session(r),
		Data:    project,
	})
}

// Login renders the sign-in form. Authenticated visitors are sent straight
// to the dashboard.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	state := h.session(r)
	if state.Authenticated {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	h.render(w, r, "login.html", PageData{
		Title:   "Sign in",
		Path:    "/login",
		Session: state,
	})
}

// Profile renders the account page for any signed-in user.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, state := h.sessionUser(r)
	if !h.guardPage(w, r, state, false) {
		return
	}

	user, err := h.identity.GetUserByID(r.Context(), userID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, "profile.html", PageData{
		Title:   "My profile",
		Path:    "/profile",
		Session: state,
		Data:    user,
	})
}

// Dashboard renders the landing page for signed-in users.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	state := h.session(r)
	if !h.guardPage(w, r, state, false) {
		return
	}
	h.render(w, r, "dashboard.html", PageData{
		Title:   "Dashboard",
		Path:    "/admin",
		Session: state,
	})
}

// Projects renders the content-management table, drafts included.
func (h *Handler) Projects(w http.ResponseWriter, r *http.Request) {
	state := h.session(r)
	if !h.guardPage(w, r, state, false) {
		return
	}
	if !rbac.IsManagerOrAdmin(state.Role) {
		h.renderDenied(w, r, state)
		return
	}

	list, err := h.projects.List(r.Context(), projects.Filter{})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, "projects.html", PageData{
		Title:   "Projects",
		Path:    "/admin/projects",
		Session: state,
		Data:    list,
	})
}

// ProjectNew renders the empty project form.
func (h *Handler) ProjectNew(w http.ResponseWriter, r *http.Request) {
	state := h.session(r)
	if !h.guardPage(w, r, state, false) {
		return
	}
	if !rbac.IsManagerOrAdmin(state.Role) {
		h.renderDenied(w, r, state)
		return
	}

	h.render(w, r, "project_form.html", PageData{
		Title:   "New project",
		Path:    "/admin/projects",
		Session: state,
	})
}

// ProjectEdit renders the form pre-filled with an existing project, drafts
// included.
func (h *Handler) ProjectEdit(w http.ResponseWriter, r *http.Request) {
	state := h.session(r)
	if !h.guardPage(w, r, state, false) {
		return
	}
	if !rbac.IsManagerOrAdmin(state.Role) {
		h.renderDenied(w, r, state)
		return
	}

	project, err := h.projects.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, projects.ErrProjectNotFound) {
			http.NotFound(w, r)
			return
		}
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, "project_form.html", PageData{
		Title:   "Edit " + project.Title,
		Path:    "/admin/projects",
		Session: state,
		Data:    project,
	})
}

// Users renders the admin-only account list.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	state := h.session(r)
	if !h.guardPage(w, r, state, true) {
		return
	}

	list, err := h.users.List(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.render(w, r, "users.html", PageData{
		Title:   "Users",
		Path:    "/admin/users",
		Session: state,
		Data:    list,
	})
}

// guardPage runs the page-level decision table and handles every outcome
// except render. Returns true when the caller should render the page.
func (h *Handler) guardPage(w http.ResponseWriter, r *http.Request, state rbac.SessionState, requireAdmin bool) bool {
	switch rbac.GuardPage(state, requireAdmin, false) {
	case rbac.PageRender:
		metrics.AuthzDecisions.WithLabelValues("page", "allow").Inc()
		return true
	case rbac.PageRedirectLogin:
		metrics.AuthzDecisions.WithLabelValues("page", "deny").Inc()
		http.Redirect(w, r, h.loginPath, http.StatusSeeOther)
		return false
	case rbac.PageUnauthorized, rbac.PageFallback:
		metrics.AuthzDecisions.WithLabelValues("page", "deny").Inc()
		h.renderDenied(w, r, state)
		return false
	default:
		// Server-side resolution is synchronous, so an unresolved state only
		// appears on a guard bug. Fail closed toward the login page.
		metrics.AuthzDecisions.WithLabelValues("page", "deny").Inc()
		http.Redirect(w, r, h.loginPath, http.StatusSeeOther)
		return false
	}
}

func (h *Handler) renderDenied(w http.ResponseWriter, r *http.Request, state rbac.SessionState) {
	w.WriteHeader(http.StatusForbidden)
	if err := h.engine.Render(w, "denied.html", PageData{
		Title:   "Not allowed",
		Path:    r.URL.Path,
		Session: state,
	}); err != nil {
		ctxlog.FromContext(r.Context()).Error("failed to render page", "error", err)
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data PageData) {
	if err := h.engine.Render(w, name, data); err != nil {
		ctxlog.FromContext(r.Context()).Error("failed to render page", "page", name, "error", err)
	}
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	ctxlog.FromContext(r.Context()).Error("failed to load page data", "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
