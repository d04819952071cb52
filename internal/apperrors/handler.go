package apperrors

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/danabekov/techstore/internal/logging"
)

// HTTPErrorHandler renders AppError values as structured JSON and collapses
// everything unexpected into a generic 500 body.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var ae *AppError
	if !errors.As(err, &ae) {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			ae = &AppError{
				Code:     CodeInternal,
				Message:  http.StatusText(he.Code),
				HTTPCode: he.Code,
			}
			if msg, ok := he.Message.(string); ok {
				ae.Message = msg
			}
			if he.Code == http.StatusNotFound {
				ae.Code = CodeNotFound
			}
		} else {
			ae = Internal(err)
		}
	}

	if ae.Code == CodeInternal {
		logging.FromContext(c.Request().Context()).Error("request failed",
			"status", ae.HTTPCode, "error", err.Error())
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(ae.HTTPCode)
		return
	}
	_ = c.JSON(ae.HTTPCode, ae)
}
