package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/danabekov/techstore/internal/handlers"
	"github.com/danabekov/techstore/internal/middleware"
	"github.com/danabekov/techstore/internal/models"
	"github.com/danabekov/techstore/internal/tokens"
)

type Deps struct {
	Issuer          *tokens.Issuer
	AuthHandler     *handlers.AuthHandler
	CategoryHandler *handlers.CategoryHandler
	ProductHandler  *handlers.ProductHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/forgot-password", d.AuthHandler.ForgotPassword)
	auth.POST("/reset-password", d.AuthHandler.ResetPassword)

	authed := v1.Group("/auth", middleware.RequireAuth(d.Issuer))
	authed.GET("/me", d.AuthHandler.Me)
	authed.POST("/change-password", d.AuthHandler.ChangePassword)
	authed.POST("/logout", d.AuthHandler.Logout)

	v1.GET("/categories", d.CategoryHandler.List)
	v1.GET("/categories/:id", d.CategoryHandler.Get)
	v1.GET("/products", d.ProductHandler.List)
	v1.GET("/products/:id", d.ProductHandler.Get)
	v1.GET("/products/category/:name", d.ProductHandler.ByCategory)
	v1.GET("/search", d.ProductHandler.Search)

	admin := v1.Group("", middleware.RequireAuth(d.Issuer), middleware.RequireRole(models.RoleAdmin))
	admin.POST("/categories", d.CategoryHandler.Create)
	admin.PATCH("/categories/:id", d.CategoryHandler.Update)
	admin.DELETE("/categories/:id", d.CategoryHandler.Delete)
	admin.POST("/products", d.ProductHandler.Create)
	admin.PATCH("/products/:id", d.ProductHandler.Patch)
	admin.DELETE("/products/:id", d.ProductHandler.Delete)
}
