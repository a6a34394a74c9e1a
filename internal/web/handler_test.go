package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-cms/atelier/internal/domain"
	"github.com/atelier-cms/atelier/internal/identity"
	"github.com/atelier-cms/atelier/internal/pkg/httputil"
	"github.com/atelier-cms/atelier/internal/projects"
	"github.com/atelier-cms/atelier/internal/users"
)

// stubProjectRepo serves a fixed project set; getErr overrides lookups.
type stubProjectRepo struct {
	projects map[string]*domain.Project
	getErr   error
}

func (s *stubProjectRepo) Create(_ context.Context, _ *domain.Project) error { return nil }

func (s *stubProjectRepo) GetByID(_ context.Context, _ string) (*domain.Project, error) {
	return nil, projects.ErrProjectNotFound
}

func (s *stubProjectRepo) GetBySlug(_ context.Context, slug string) (*domain.Project, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if p, ok := s.projects[slug]; ok {
		return p, nil
	}
	return nil, projects.ErrProjectNotFound
}

func (s *stubProjectRepo) List(_ context.Context, _ projects.Filter) ([]domain.Project, error) {
	return nil, nil
}

func (s *stubProjectRepo) Update(_ context.Context, _ *domain.Project) error { return nil }

func (s *stubProjectRepo) Delete(_ context.Context, _ string) error { return nil }

func (s *stubProjectRepo) SetActive(_ context.Context, _ string, _ bool) error { return nil }

func (s *stubProjectRepo) CountAll(_ context.Context) (int, error) { return 0, nil }

func (s *stubProjectRepo) UpdatePositions(_ context.Context, _ []string) error { return nil }

// stubAuth resolves every token to a fixed principal.
type stubAuth struct {
	userID string
	role   domain.Role
	err    error
}

func (s *stubAuth) GenerateTokens(_ context.Context, _ *domain.User) (*identity.TokenPair, error) {
	return &identity.TokenPair{}, nil
}

func (s *stubAuth) ValidateAccessToken(_ context.Context, _ string) (string, domain.Role, error) {
	return s.userID, s.role, s.err
}

func (s *stubAuth) RefreshTokens(_ context.Context, _ string) (*identity.TokenPair, error) {
	return &identity.TokenPair{}, nil
}

func (s *stubAuth) RevokeRefreshToken(_ context.Context, _ string) error { return nil }

// stubIdentityRepo satisfies identity.Repository; pages under test never
// reach it.
type stubIdentityRepo struct{}

func (stubIdentityRepo) CreateUser(_ context.Context, _ *domain.User) error { return nil }
func (stubIdentityRepo) GetUserByID(_ context.Context, _ string) (*domain.User, error) {
	return nil, identity.ErrUserNotFound
}
func (stubIdentityRepo) GetUserByEmail(_ context.Context, _ string) (*domain.User, error) {
	return nil, identity.ErrUserNotFound
}
func (stubIdentityRepo) UpdateUser(_ context.Context, _ *domain.User) error { return nil }
func (stubIdentityRepo) SaveRefreshToken(_ context.Context, _ *domain.RefreshToken) error {
	return nil
}
func (stubIdentityRepo) GetRefreshToken(_ context.Context, _ string) (*domain.RefreshToken, error) {
	return nil, identity.ErrInvalidToken
}
func (stubIdentityRepo) DeleteRefreshToken(_ context.Context, _ string) error { return nil }

func (stubIdentityRepo) DeleteUserRefreshTokens(_ context.Context, _ string) error { return nil }

func newTestRouter(t *testing.T, repo *stubProjectRepo, auth *stubAuth) chi.Router {
	t.Helper()

	engine, err := NewEngine()
	require.NoError(t, err)

	handler := NewHandler(
		engine,
		identity.NewService(stubIdentityRepo{}, auth),
		projects.NewService(repo),
		users.NewService(nil, nil),
		"/login",
	)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func asRole(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: httputil.AccessTokenCookie, Value: "token"})
	return req
}

func TestWork_MissingProjectIs404(t *testing.T) {
	router := newTestRouter(t, &stubProjectRepo{}, &stubAuth{err: errors.New("no session")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/work/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWork_RepositoryFailureIs500(t *testing.T) {
	repo := &stubProjectRepo{getErr: errors.New("connection reset")}
	router := newTestRouter(t, repo, &stubAuth{err: errors.New("no session")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/work/folio", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code,
		"a database failure must not read as a missing project")
}

func TestProjectNew_RendersFormForManager(t *testing.T) {
	router := newTestRouter(t, &stubProjectRepo{}, &stubAuth{userID: "m1", role: domain.RoleManager})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asRole(httptest.NewRequest(http.MethodGet, "/admin/projects/new", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "New project")
	assert.Contains(t, body, "/api/v1/admin/projects")
	assert.Contains(t, body, httputil.CSRFTokenHeader)
}

func TestProjectEdit_PrefillsExistingProject(t *testing.T) {
	repo := &stubProjectRepo{projects: map[string]*domain.Project{
		"folio": {Title: "Folio", Slug: "folio", Position: 3},
	}}
	router := newTestRouter(t, repo, &stubAuth{userID: "m1", role: domain.RoleManager})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asRole(httptest.NewRequest(http.MethodGet, "/admin/projects/folio/edit", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Edit project")
	assert.Contains(t, body, `data-slug="folio"`)
	assert.Contains(t, body, `data-position="3"`)
}

func TestProjectEdit_UnknownSlugIs404(t *testing.T) {
	router := newTestRouter(t, &stubProjectRepo{}, &stubAuth{userID: "m1", role: domain.RoleManager})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asRole(httptest.NewRequest(http.MethodGet, "/admin/projects/missing/edit", nil)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjectNew_DeniedForPlainUser(t *testing.T) {
	router := newTestRouter(t, &stubProjectRepo{}, &stubAuth{userID: "u1", role: domain.RoleUser})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asRole(httptest.NewRequest(http.MethodGet, "/admin/projects/new", nil)))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
