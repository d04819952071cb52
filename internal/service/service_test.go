package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/danabekov/techstore/internal/config"
	"github.com/danabekov/techstore/internal/repo"
	"github.com/danabekov/techstore/internal/tokens"
)

// newTestRepo opens a per-test in-memory database. The DSN carries the test
// name so parallel tests never share state.
func newTestRepo(t *testing.T) *repo.GormRepo {
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
	return repo.New(db)
}

func newTestIssuer() *tokens.Issuer {
	return tokens.NewIssuer("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour, time.Hour)
}

type fakeMailer struct {
	sent     int
	to       string
	name     string
	resetURL string
}

func (f *fakeMailer) SendPasswordReset(to, name, resetURL string) error {
	f.sent++
	f.to = to
	f.name = name
	f.resetURL = resetURL
	return nil
}

func newAuthEnv(t *testing.T) (*AuthService, *repo.GormRepo, *fakeMailer) {
	t.Helper()

	r := newTestRepo(t)
	mailer := &fakeMailer{}
	svc := &AuthService{
		Repo:         r,
		Tokens:       newTestIssuer(),
		Mailer:       mailer,
		ResetURLBase: "http://localhost:5173/reset-password",
	}
	return svc, r, mailer
}

func newCatalogEnv(t *testing.T) *CatalogService {
	t.Helper()
	return &CatalogService{Repo: newTestRepo(t)}
}
