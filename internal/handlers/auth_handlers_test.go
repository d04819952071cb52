package handlers_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danabekov/techstore/internal/models"
)

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name":             "Test User",
		"email":            "new@example.com",
		"password":         "password123",
		"confirm_password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	user := body["user"].(map[string]any)
	require.Equal(t, "new@example.com", user["email"])
	require.Equal(t, "User", user["role"])
	require.NotContains(t, user, "password_hash")

	// duplicate email
	rec = env.doJSON(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name": "Other", "email": "new@example.com", "password": "password456",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "DUPLICATE_IDENTITY", decode(t, rec)["code"])
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []map[string]string{
		{"name": "X", "email": "not-an-email", "password": "password123"},
		{"name": "X", "email": "x@example.com", "password": "short"},
		{"name": "X", "email": "x@example.com", "password": "password123", "confirm_password": "different123"},
		{"name": "", "email": "x@example.com", "password": "password123"},
	}
	for _, payload := range cases {
		rec := env.doJSON(http.MethodPost, "/api/v1/auth/register", payload, "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "VALIDATION_FAILED", decode(t, rec)["code"])
	}
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.register("login@example.com")

	rec := env.doJSON(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "login@example.com", "password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	require.NotEmpty(t, body["access_token"])
	require.NotEmpty(t, body["refresh_token"])
	require.Equal(t, "login@example.com", body["user"].(map[string]any)["email"])

	rec = env.doJSON(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "login@example.com", "password": "wrong",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "INVALID_CREDENTIALS", decode(t, rec)["code"])
}

func TestMeEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.register("me@example.com")
	access, _ := env.login("me@example.com", "password123")

	rec := env.doJSON(http.MethodGet, "/api/v1/auth/me", nil, access)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "me@example.com", decode(t, rec)["user"].(map[string]any)["email"])

	rec = env.doJSON(http.MethodGet, "/api/v1/auth/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.doJSON(http.MethodGet, "/api/v1/auth/me", nil, "garbage-token")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "UNAUTHENTICATED", decode(t, rec)["code"])
}

func TestMeEndpointDistinguishesMissingUserFromStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.register("me@example.com")
	access, _ := env.login("me@example.com", "password123")

	// a deactivated account is a 404, not an internal fault
	err := env.DB.Model(&models.User{}).Where("email = ?", "me@example.com").Update("is_active", false).Error
	require.NoError(t, err)

	rec := env.doJSON(http.MethodGet, "/api/v1/auth/me", nil, access)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", decode(t, rec)["code"])

	// a broken store must surface as 500, never as 404
	sqlDB, err := env.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	rec = env.doJSON(http.MethodGet, "/api/v1/auth/me", nil, access)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "INTERNAL_ERROR", decode(t, rec)["code"])
}

func TestRefreshEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.register("refresh@example.com")
	_, refresh := env.login("refresh@example.com", "password123")

	rec := env.doJSON(http.MethodPost, "/api/v1/auth/refresh", map[string]string{
		"refresh_token": refresh,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, decode(t, rec)["access_token"])

	rec = env.doJSON(http.MethodPost, "/api/v1/auth/refresh", map[string]string{
		"refresh_token": "garbage",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "INVALID_OR_EXPIRED_TOKEN", decode(t, rec)["code"])
}

func TestLogoutEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.register("logout@example.com")
	access, refresh := env.login("logout@example.com", "password123")

	rec := env.doJSON(http.MethodPost, "/api/v1/auth/logout", map[string]string{
		"refresh_token": refresh,
	}, access)
	require.Equal(t, http.StatusOK, rec.Code)

	// the revoked token no longer refreshes
	rec = env.doJSON(http.MethodPost, "/api/v1/auth/refresh", map[string]string{
		"refresh_token": refresh,
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// logout itself requires authentication
	rec = env.doJSON(http.MethodPost, "/api/v1/auth/logout", map[string]string{
		"refresh_token": refresh,
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePasswordEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.register("change@example.com")
	access, _ := env.login("change@example.com", "password123")

	rec := env.doJSON(http.MethodPost, "/api/v1/auth/change-password", map[string]string{
		"current_password": "wrong", "new_password": "newpassword1",
	}, access)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSON(http.MethodPost, "/api/v1/auth/change-password", map[string]string{
		"current_password": "password123", "new_password": "newpassword1",
	}, access)
	require.Equal(t, http.StatusOK, rec.Code)

	env.login("change@example.com", "newpassword1")
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	env.register("reset@example.com")

	rec := env.doJSON(http.MethodPost, "/api/v1/auth/forgot-password", map[string]string{
		"email": "reset@example.com",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, env.Mailer.sent)

	parsed, err := url.Parse(env.Mailer.resetURL)
	require.NoError(t, err)
	token := parsed.Query().Get("token")
	require.NotEmpty(t, token)

	rec = env.doJSON(http.MethodPost, "/api/v1/auth/reset-password", map[string]string{
		"token": token, "new_password": "resetpass1",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	env.login("reset@example.com", "resetpass1")

	rec = env.doJSON(http.MethodPost, "/api/v1/auth/forgot-password", map[string]string{
		"email": "nobody@example.com",
	}, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
