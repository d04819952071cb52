package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/danabekov/techstore/internal/apperrors"
	"github.com/danabekov/techstore/internal/tokens"
)

const (
	claimsKey = "claims"
	userIDKey = "userID"
	roleKey   = "role"
)

// RequireAuth verifies the bearer access token purely by signature and
// expiry; no database lookup happens here. Only refresh tokens are checked
// against persisted state, elsewhere.
func RequireAuth(issuer *tokens.Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
			if header == "" {
				return apperrors.Unauthenticated("missing authorization token")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return apperrors.Unauthenticated("invalid authorization format")
			}

			claims, err := issuer.ParseAccess(strings.TrimSpace(parts[1]))
			if err != nil {
				return apperrors.Unauthenticated("invalid or expired access token")
			}

			c.Set(claimsKey, claims)
			c.Set(userIDKey, claims.UserID)
			c.Set(roleKey, claims.Role)
			return next(c)
		}
	}
}

// RequireRole gates an operation to the listed roles. It runs after
// RequireAuth and reads the role claim from the request context.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(roleKey).(string)
			if !ok || role == "" {
				return apperrors.Unauthenticated("missing authorization token")
			}
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}
			return apperrors.Forbidden()
		}
	}
}

func Claims(c echo.Context) *tokens.AccessClaims {
	claims, _ := c.Get(claimsKey).(*tokens.AccessClaims)
	return claims
}

func UserID(c echo.Context) uint {
	id, _ := c.Get(userIDKey).(uint)
	return id
}
