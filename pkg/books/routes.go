package books

import (
	"github.com/labstack/echo/v4"
	"github.com/shelfpress/shelfpress/pkg/auth"
	"github.com/shelfpress/shelfpress/pkg/config"
	"github.com/shelfpress/shelfpress/pkg/covers"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers the public read routes and the session-gated
// mutation routes for books.
func RegisterRoutes(e *echo.Echo, db *bun.DB, cfg *config.Config, authMiddleware *auth.Middleware) {
	bookService := NewService(db)
	coverService := covers.NewService(cfg.UploadDir, cfg.MaxCoverSizeBytes)

	h := &handler{
		bookService:  bookService,
		coverService: coverService,
	}

	g := e.Group("/api/books")
	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("", h.create, authMiddleware.Authenticate)
	g.POST("/:id", h.update, authMiddleware.Authenticate)
	g.PUT("/:id", h.update, authMiddleware.Authenticate)
	g.DELETE("/:id", h.delete, authMiddleware.Authenticate)
	g.POST("/:id/cover", h.uploadCover, authMiddleware.Authenticate)
}
