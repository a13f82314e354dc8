package auth

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all auth routes and returns the auth service so
// the server can build the session gate middleware from it.
func RegisterRoutes(e *echo.Echo, db *bun.DB, sessionTTL time.Duration) *Service {
	authService := NewService(db, sessionTTL)
	authMiddleware := NewMiddleware(authService)

	h := &handler{
		authService: authService,
	}

	auth := e.Group("/auth")
	auth.POST("/login", h.login)
	auth.POST("/logout", h.logout, authMiddleware.Authenticate)
	auth.GET("/me", h.me, authMiddleware.Authenticate)

	return authService
}
