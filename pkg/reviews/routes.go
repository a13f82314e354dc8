package reviews

import (
	"github.com/labstack/echo/v4"
	"github.com/shelfpress/shelfpress/pkg/auth"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the public read routes and the session-gated
// mutation routes for reviews.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) {
	reviewService := NewService(db)

	h := &handler{
		reviewService: reviewService,
	}

	g := e.Group("/api/reviews")
	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("", h.create, authMiddleware.Authenticate)
	g.POST("/:id", h.update, authMiddleware.Authenticate)
	g.PUT("/:id", h.update, authMiddleware.Authenticate)
	g.DELETE("/:id", h.delete, authMiddleware.Authenticate)
}
