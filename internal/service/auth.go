package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/danabekov/techstore/internal/apperrors"
	"github.com/danabekov/techstore/internal/hash"
	"github.com/danabekov/techstore/internal/logging"
	"github.com/danabekov/techstore/internal/mail"
	"github.com/danabekov/techstore/internal/models"
	"github.com/danabekov/techstore/internal/repo"
	"github.com/danabekov/techstore/internal/tokens"
)

// AuthService owns the credential, token and refresh-ledger flows. Every flow
// is synchronous and commits its persistence writes as a unit.
type AuthService struct {
	Repo         *repo.GormRepo
	Tokens       *tokens.Issuer
	Mailer       mail.Sender
	ResetURLBase string
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

// Register stores a new user with role User. The email pre-check and the
// unique index both surface as DuplicateIdentity; the index is what settles
// concurrent registrations.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	taken, err := s.Repo.EmailTaken(ctx, email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if taken {
		return nil, apperrors.DuplicateIdentity()
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("hash password", "error", err)
		return nil, apperrors.Internal(err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if repo.IsDuplicate(err) {
			return nil, apperrors.DuplicateIdentity()
		}
		l.Error("create user", "error", err)
		return nil, apperrors.Internal(err)
	}

	l.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and issues a fresh token pair. Persisting the
// refresh token replaces every prior token for the account, so logging in on
// a second device ends the first device's session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, apperrors.InvalidCredentials()
		}
		return nil, apperrors.Internal(err)
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, apperrors.InvalidCredentials()
	}

	access, _, err := s.Tokens.AccessToken(user)
	if err != nil {
		l.Error("sign access token", "error", err)
		return nil, apperrors.Internal(err)
	}
	refresh, refreshExp, err := s.Tokens.RefreshToken(user)
	if err != nil {
		l.Error("sign refresh token", "error", err)
		return nil, apperrors.Internal(err)
	}

	if err := s.Repo.IssueRefreshToken(ctx, user.ID, refresh, refreshExp); err != nil {
		l.Error("persist refresh token", "error", err)
		return nil, apperrors.Internal(err)
	}

	l.Info("user logged in", "user_id", user.ID)
	return &LoginResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// Refresh mints a new access token from a live refresh token. Claims are
// re-read from current user state, so a role change takes effect on the next
// refresh without re-login. The refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (string, error) {
	claims, err := s.Tokens.ParseRefresh(rawRefresh)
	if err != nil {
		return "", apperrors.InvalidToken()
	}

	valid, err := s.Repo.RefreshTokenValid(ctx, rawRefresh)
	if err != nil {
		return "", apperrors.Internal(err)
	}
	if !valid {
		return "", apperrors.InvalidToken()
	}

	user, err := s.Repo.UserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return "", apperrors.NotFound("user not found")
		}
		return "", apperrors.Internal(err)
	}

	access, _, err := s.Tokens.AccessToken(user)
	if err != nil {
		return "", apperrors.Internal(err)
	}
	return access, nil
}

// ChangePassword always requires the current password, including for Admin.
// A wrong current password leaves both the stored hash and the refresh ledger
// untouched.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return apperrors.NotFound("user not found")
		}
		return apperrors.Internal(err)
	}
	if !hash.CheckPassword(user.PasswordHash, currentPassword) {
		return apperrors.BadRequest("current password is incorrect")
	}

	return s.setPasswordAndRevoke(ctx, user.ID, newPassword)
}

// ForgotPassword issues a stateless, purpose-salted reset token bound to the
// email and mails the reset link. No row is written.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.forgot_password")

	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return apperrors.NotFound("no user found with this email")
		}
		return apperrors.Internal(err)
	}

	token, err := s.Tokens.ResetToken(user.Email)
	if err != nil {
		return apperrors.Internal(err)
	}

	resetURL := fmt.Sprintf("%s?token=%s", s.ResetURLBase, url.QueryEscape(token))
	if err := s.Mailer.SendPasswordReset(user.Email, user.Name, resetURL); err != nil {
		l.Error("send reset mail", "error", err)
		return apperrors.Internal(err)
	}

	l.Info("reset mail sent", "user_id", user.ID)
	return nil
}

// ResetPassword verifies the token's signature, expiry and purpose, then sets
// the new password and revokes all refresh tokens. The token stays usable for
// its 1h window; it is time-boxed, not single-use.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	email, err := s.Tokens.ParseReset(rawToken)
	if err != nil {
		return apperrors.InvalidToken()
	}

	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return apperrors.NotFound("user not found")
		}
		return apperrors.Internal(err)
	}

	return s.setPasswordAndRevoke(ctx, user.ID, newPassword)
}

// Logout revokes the presented refresh token; the access token simply runs
// out its remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, rawRefresh string) error {
	found, err := s.Repo.RevokeRefreshToken(ctx, rawRefresh)
	if err != nil {
		return apperrors.Internal(err)
	}
	if !found {
		return apperrors.InvalidToken()
	}
	return nil
}

// setPasswordAndRevoke writes the new hash and clears the refresh ledger as
// one transaction, forcing re-login on all devices.
func (s *AuthService) setPasswordAndRevoke(ctx context.Context, userID uint, newPassword string) error {
	pwHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return apperrors.Internal(err)
	}

	err = s.Repo.WithTx(func(tx *repo.GormRepo) error {
		if err := tx.UpdatePassword(ctx, userID, pwHash); err != nil {
			return err
		}
		return tx.RevokeAllRefreshTokens(ctx, userID)
	})
	if err != nil {
		return apperrors.Internal(err)
	}
	return nil
}
