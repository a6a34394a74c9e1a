//go:build integration

package app_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-cms/atelier/internal/testutil"
)

type projectPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
	Position    int    `json:"position"`
}

type projectResult struct {
	Data projectPayload `json:"data"`
}

type projectListResult struct {
	Data []projectPayload `json:"data"`
}

func createProject(t *testing.T, client *testutil.Client, title string, active bool) projectPayload {
	t.Helper()

	resp, err := client.POST("/api/v1/admin/projects", map[string]any{
		"title":  title,
		"active": active,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result projectResult
	testutil.DecodeJSON(t, resp, &result)
	return result.Data
}

func TestProjects_Create_RequiresAuth(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.POST("/api/v1/admin/projects", map[string]any{"title": "Nope"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestProjects_Create_ForbiddenForUser(t *testing.T) {
	client := newTestClient(t)
	client.LoginAsUser(t)

	resp, err := client.POST("/api/v1/admin/projects", map[string]any{"title": "Nope"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// No partial side effects: the project must not exist.
	resp, err = client.WithoutValidation().GET("/api/v1/projects/nope")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestProjects_Create_AsManager(t *testing.T) {
	client := newTestClient(t)
	client.LoginAsManager(t)

	project := createProject(t, client, "Brand Refresh", false)
	assert.Equal(t, "Brand Refresh", project.Title)
	assert.Equal(t, "brand-refresh", project.Slug, "slug derived from title")
	assert.False(t, project.Active)
}

func TestProjects_Create_DuplicateSlug(t *testing.T) {
	client := newTestClient(t)
	client.LoginAsManager(t)

	title := fmt.Sprintf("Dup %s", testutil.RandomEmail()[:8])
	createProject(t, client, title, false)

	resp, err := client.POST("/api/v1/admin/projects", map[string]any{"title": title})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestProjects_PublicList_HidesDrafts(t *testing.T) {
	client := newTestClient(t)
	client.LoginAsManager(t)

	published := createProject(t, client, "Published Piece", true)
	draft := createProject(t, client, "Draft Piece", false)

	anon := newTestClient(t)
	resp, err := anon.GET("/api/v1/projects")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result projectListResult
	testutil.DecodeJSON(t, resp, &result)

	slugs := make(map[string]bool, len(result.Data))
	for _, p := range result.Data {
		slugs[p.Slug] = true
		assert.True(t, p.Active, "public list must only contain active projects")
	}
	assert.True(t, slugs[published.Slug])
	assert.False(t, slugs[draft.Slug])

	// Direct fetch of a draft by slug is indistinguishable from absence.
	resp, err = anon.WithoutValidation().GET("/api/v1/projects/" + draft.Slug)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestProjects_Update_And_Publish(t *testing.T) {
	client := newTestClient(t)
	client.LoginAsManager(t)

	project := createProject(t, client, "Work In Progress", false)

	resp, err := client.PATCH("/api/v1/admin/projects/"+project.Slug, map[string]any{
		"title":       project.Title,
		"description": "Updated copy",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var updated projectResult
	testutil.DecodeJSON(t, resp, &updated)
	assert.Equal(t, "Updated copy", updated.Data.Description)

	resp, err = client.POST("/api/v1/admin/projects/"+project.Slug+"/activate", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var published projectResult
	testutil.DecodeJSON(t, resp, &published)
	assert.True(t, published.Data.Active)
}

func TestProjects_Delete_AsManager(t *testing.T) {
	client := newTestClient(t)
	client.LoginAsManager(t)

	project := createProject(t, client, "Short Lived", false)

	resp, err := client.DELETE("/api/v1/admin/projects/" + project.Slug)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err = client.WithoutValidation().GET("/api/v1/admin/projects/" + project.Slug)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestProjects_Reorder_RejectsPartialList(t *testing.T) {
	client := newTestClient(t)
	client.LoginAsManager(t)

	project := createProject(t, client, "Lonely Entry", false)
	createProject(t, client, "Second Entry", false)

	// Naming only one project cannot cover the whole catalog.
	resp, err := client.PUT("/api/v1/admin/projects/reorder", map[string]any{
		"project_ids": []string{project.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestProjects_AdminList_IncludesDrafts(t *testing.T) {
	client := newTestClient(t)
	client.LoginAsManager(t)

	draft := createProject(t, client, "Only In Admin", false)

	resp, err := client.GET("/api/v1/admin/projects")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result projectListResult
	testutil.DecodeJSON(t, resp, &result)

	found := false
	for _, p := range result.Data {
		if p.Slug == draft.Slug {
			found = true
		}
	}
	assert.True(t, found, "admin list must include drafts")
}

func TestUploads_ForbiddenForUser(t *testing.T) {
	client := newTestClient(t)
	client.LoginAsUser(t)

	resp, err := client.WithoutValidation().POST("/api/v1/admin/uploads", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}
