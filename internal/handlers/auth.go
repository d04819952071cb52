package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/danabekov/techstore/internal/apperrors"
	"github.com/danabekov/techstore/internal/logging"
	"github.com/danabekov/techstore/internal/middleware"
	"github.com/danabekov/techstore/internal/mykafka"
	"github.com/danabekov/techstore/internal/repo"
	"github.com/danabekov/techstore/internal/service"
)

type AuthHandler struct {
	Auth     *service.AuthService
	Repo     *repo.GormRepo
	Producer *mykafka.Producer
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish", "error", err)
	}
}

type registerRequest struct {
	Name            string `json:"name" validate:"required,min=1,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"omitempty,eqfield=Password"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.BadRequest("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.Auth.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	h.publish(c, strconv.FormatUint(uint64(user.ID), 10), map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "user registered successfully",
		"user":    newUserResponse(user),
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.BadRequest("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.publish(c, strconv.FormatUint(uint64(result.User.ID), 10), map[string]any{
		"type":    "user_logged_in",
		"user_id": result.User.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message":       "login successful",
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"user":          newUserResponse(result.User),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.BadRequest("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	access, err := h.Auth.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"access_token": access})
}

// Me re-reads the user from the store; the access token proves identity but
// the profile reflects current state.
func (h *AuthHandler) Me(c echo.Context) error {
	claims := middleware.Claims(c)
	if claims == nil {
		return apperrors.Unauthenticated("missing authorization token")
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return apperrors.BadRequest("invalid user id")
	}

	user, err := h.Repo.UserByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return apperrors.NotFound("user not found")
		}
		return apperrors.Internal(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": newUserResponse(user)})
}

type changePasswordRequest struct {
	CurrentPassword    string `json:"current_password" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,min=6,max=128"`
	ConfirmNewPassword string `json:"confirm_new_password" validate:"omitempty,eqfield=NewPassword"`
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.BadRequest("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.Auth.ChangePassword(c.Request().Context(), middleware.UserID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed successfully"})
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.BadRequest("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.Auth.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reset link sent"})
}

type resetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"omitempty,eqfield=NewPassword"`
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.BadRequest("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.Auth.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password reset successfully"})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.BadRequest("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.Auth.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
