//go:build integration

package app_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-cms/atelier/internal/pkg/httputil"
	"github.com/atelier-cms/atelier/internal/testutil"
)

func TestAuth_Register_Login_Flow(t *testing.T) {
	client := newTestClient(t)
	email := testutil.RandomEmail()
	password := "password123"

	resp, err := client.POST("/api/v1/auth/register", map[string]string{
		"email":    email,
		"password": password,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var registerResult struct {
		Data struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &registerResult)
	assert.Equal(t, email, registerResult.Data.Email)
	assert.Equal(t, "user", registerResult.Data.Role, "new accounts always start as user")
	assert.NotEmpty(t, registerResult.Data.ID)

	resp, err = client.POST("/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cookies := resp.Cookies()
	var hasAccessToken, hasRefreshToken, hasCSRFToken bool
	for _, c := range cookies {
		switch c.Name {
		case httputil.AccessTokenCookie:
			hasAccessToken = true
			assert.True(t, c.HttpOnly)
		case httputil.RefreshTokenCookie:
			hasRefreshToken = true
			assert.True(t, c.HttpOnly)
		case httputil.CSRFTokenCookie:
			hasCSRFToken = true
			assert.False(t, c.HttpOnly) // CSRF token must be readable by JS
		}
	}
	assert.True(t, hasAccessToken, "access_token cookie should be set")
	assert.True(t, hasRefreshToken, "refresh_token cookie should be set")
	assert.True(t, hasCSRFToken, "csrf_token cookie should be set")
}

func TestAuth_Login_InvalidCredentials(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.POST("/api/v1/auth/login", map[string]string{
		"email":    "nonexistent@example.com",
		"password": "wrongpassword",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAuth_Register_DuplicateEmail(t *testing.T) {
	client := newTestClient(t)
	email := testutil.RandomEmail()

	resp, err := client.POST("/api/v1/auth/register", map[string]string{
		"email":    email,
		"password": "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err = client.POST("/api/v1/auth/register", map[string]string{
		"email":    email,
		"password": "password456",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestAuth_Session_Anonymous(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.GET("/api/v1/auth/session")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data struct {
			Authenticated    bool     `json:"authenticated"`
			Role             string   `json:"role"`
			IsAdmin          bool     `json:"is_admin"`
			CanManageContent bool     `json:"can_manage_content"`
			Permissions      []string `json:"permissions"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.False(t, result.Data.Authenticated)
	assert.Equal(t, "user", result.Data.Role)
	assert.False(t, result.Data.IsAdmin)
	assert.False(t, result.Data.CanManageContent)
	assert.Empty(t, result.Data.Permissions)
}

func TestAuth_Session_DerivedBooleans(t *testing.T) {
	tests := []struct {
		name             string
		login            func(c *testutil.Client, t *testing.T)
		role             string
		isAdmin          bool
		canManageContent bool
	}{
		{"user", func(c *testutil.Client, t *testing.T) { c.LoginAsUser(t) }, "user", false, false},
		{"manager", func(c *testutil.Client, t *testing.T) { c.LoginAsManager(t) }, "manager", false, true},
		{"admin", func(c *testutil.Client, t *testing.T) { c.LoginAsAdmin(t) }, "admin", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t)
			tt.login(client, t)

			resp, err := client.GET("/api/v1/auth/session")
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			var result struct {
				Data struct {
					Authenticated    bool     `json:"authenticated"`
					Role             string   `json:"role"`
					IsAdmin          bool     `json:"is_admin"`
					CanManageContent bool     `json:"can_manage_content"`
					Permissions      []string `json:"permissions"`
				} `json:"data"`
			}
			testutil.DecodeJSON(t, resp, &result)
			assert.True(t, result.Data.Authenticated)
			assert.Equal(t, tt.role, result.Data.Role)
			assert.Equal(t, tt.isAdmin, result.Data.IsAdmin)
			assert.Equal(t, tt.canManageContent, result.Data.CanManageContent)
			assert.NotEmpty(t, result.Data.Permissions)
		})
	}
}

func TestAuth_Me_RequiresAuth(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.GET("/api/v1/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestAuth_Me_ReturnsCurrentUser(t *testing.T) {
	client := newTestClient(t)
	client.LoginAsAdmin(t)

	resp, err := client.GET("/api/v1/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, "admin@example.com", result.Data.Email)
	assert.Equal(t, "admin", result.Data.Role)
}

func TestAuth_UpdateMe(t *testing.T) {
	client := newTestClient(t)
	email := testutil.RandomEmail()

	resp, err := client.POST("/api/v1/auth/register", map[string]string{
		"email":    email,
		"password": "password123",
		"name":     "Before",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	client.LoginAs(t, email, "password123")

	resp, err = client.PATCH("/api/v1/me", map[string]string{"name": "After"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, "After", result.Data.Name)
}

func TestAuth_CookieAuth_FailsWithoutCSRF(t *testing.T) {
	client := newTestClient(t)
	client.LoginAsAdmin(t)

	// Clear CSRF token but keep cookies
	client.CSRFToken = ""

	resp, err := client.WithoutValidation().PATCH("/api/v1/me", map[string]string{"name": "x"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestAuth_Refresh_RotatesTokens(t *testing.T) {
	client := newTestClient(t)
	client.LoginAsUser(t)

	resp, err := client.POST("/api/v1/auth/refresh", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// The old refresh token was revoked by rotation, so a second refresh
	// with the new cookie must also succeed.
	resp, err = client.POST("/api/v1/auth/refresh", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

func TestAuth_Logout_RevokesRefreshToken(t *testing.T) {
	client := newTestClient(t)
	client.LoginAsUser(t)

	resp, err := client.POST("/api/v1/auth/logout", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp, err = client.WithoutValidation().POST("/api/v1/auth/refresh", nil)
	require.NoError(t, err)
	// Cookies were cleared client-side; the server rejects either way.
	assert.Contains(t, []int{http.StatusBadRequest, http.StatusUnauthorized}, resp.StatusCode)
	resp.Body.Close()
}
