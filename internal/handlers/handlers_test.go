package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/danabekov/techstore/internal/apperrors"
	"github.com/danabekov/techstore/internal/config"
	"github.com/danabekov/techstore/internal/handlers"
	"github.com/danabekov/techstore/internal/models"
	"github.com/danabekov/techstore/internal/repo"
	"github.com/danabekov/techstore/internal/service"
	"github.com/danabekov/techstore/internal/tokens"
	httpserver "github.com/danabekov/techstore/internal/transport/http"
)

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	DB     *gorm.DB
	Repo   *repo.GormRepo
	Issuer *tokens.Issuer
	Mailer *recordingMailer
}

type recordingMailer struct {
	sent     int
	resetURL string
}

func (m *recordingMailer) SendPasswordReset(to, name, resetURL string) error {
	m.sent++
	m.resetURL = resetURL
	return nil
}

// newTestEnv wires the full router against an in-memory database. Kafka and
// elasticsearch stay nil, same as a local run without a broker or index.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	r := repo.New(db)
	issuer := tokens.NewIssuer("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour, time.Hour)
	mailer := &recordingMailer{}

	authSvc := &service.AuthService{
		Repo:         r,
		Tokens:       issuer,
		Mailer:       mailer,
		ResetURLBase: "http://localhost:5173/reset-password",
	}
	catalogSvc := &service.CatalogService{Repo: r}

	e := echo.New()
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler
	e.Validator = handlers.NewValidator()

	httpserver.Register(e, &httpserver.Deps{
		Issuer:          issuer,
		AuthHandler:     &handlers.AuthHandler{Auth: authSvc, Repo: r},
		CategoryHandler: &handlers.CategoryHandler{Catalog: catalogSvc},
		ProductHandler:  &handlers.ProductHandler{Catalog: catalogSvc},
	})

	return &testEnv{T: t, E: e, DB: db, Repo: r, Issuer: issuer, Mailer: mailer}
}

func (env *testEnv) doJSON(method, path string, body any, token string) *httptest.ResponseRecorder {
	env.T.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(env.T, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (env *testEnv) register(email string) {
	env.T.Helper()
	rec := env.doJSON(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name":     "Test User",
		"email":    email,
		"password": "password123",
	}, "")
	require.Equal(env.T, http.StatusCreated, rec.Code)
}

// login returns the access and refresh tokens for the account.
func (env *testEnv) login(email, password string) (string, string) {
	env.T.Helper()
	rec := env.doJSON(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(env.T, http.StatusOK, rec.Code)
	body := decode(env.T, rec)
	return body["access_token"].(string), body["refresh_token"].(string)
}

// adminToken registers an account, promotes it and returns a fresh access
// token carrying the Admin role.
func (env *testEnv) adminToken() string {
	env.T.Helper()
	email := "admin@example.com"
	env.register(email)
	err := env.DB.Model(&models.User{}).Where("email = ?", email).Update("role", models.RoleAdmin).Error
	require.NoError(env.T, err)
	access, _ := env.login(email, "password123")
	return access
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusOK, env.doJSON(http.MethodGet, "/health/live", nil, "").Code)
	require.Equal(t, http.StatusOK, env.doJSON(http.MethodGet, "/health/ready", nil, "").Code)
}
