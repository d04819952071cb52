package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidationFailed   Code = "VALIDATION_FAILED"
	CodeDuplicateIdentity  Code = "DUPLICATE_IDENTITY"
	CodeDuplicateName      Code = "DUPLICATE_NAME"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeNotFound           Code = "NOT_FOUND"
	CodeInvalidToken       Code = "INVALID_OR_EXPIRED_TOKEN"
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeInternal           Code = "INTERNAL_ERROR"
)

// AppError is the typed failure every flow returns. The HTTP layer maps it to
// a stable status and renders Code/Message/Details; Err never leaves the process.
type AppError struct {
	Code     Code   `json:"code"`
	Message  string `json:"error"`
	Details  any    `json:"details,omitempty"`
	HTTPCode int    `json:"-"`
	Err      error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func New(code Code, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode}
}

func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

func Validation(details any) *AppError {
	return New(CodeValidationFailed, "validation failed", http.StatusBadRequest).WithDetails(details)
}

func DuplicateIdentity() *AppError {
	return New(CodeDuplicateIdentity, "user with this email already exists", http.StatusBadRequest)
}

func DuplicateName(entity string) *AppError {
	return New(CodeDuplicateName, entity+" name already exists", http.StatusBadRequest)
}

// InvalidCredentials deliberately uses one message for both unknown-email and
// wrong-password so callers cannot enumerate accounts.
func InvalidCredentials() *AppError {
	return New(CodeInvalidCredentials, "invalid email or password", http.StatusUnauthorized)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message, http.StatusNotFound)
}

func InvalidToken() *AppError {
	return New(CodeInvalidToken, "invalid or expired token", http.StatusUnauthorized)
}

func Unauthenticated(message string) *AppError {
	return New(CodeUnauthenticated, message, http.StatusUnauthorized)
}

func Forbidden() *AppError {
	return New(CodeForbidden, "insufficient permissions", http.StatusForbidden)
}

func BadRequest(message string) *AppError {
	return New(CodeValidationFailed, message, http.StatusBadRequest)
}

func Internal(err error) *AppError {
	return &AppError{
		Code:     CodeInternal,
		Message:  "internal server error",
		HTTPCode: http.StatusInternalServerError,
		Err:      err,
	}
}

func Is(err error, code Code) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

func From(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}
