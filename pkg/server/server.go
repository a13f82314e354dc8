package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/shelfpress/shelfpress/pkg/auth"
	"github.com/shelfpress/shelfpress/pkg/binder"
	"github.com/shelfpress/shelfpress/pkg/books"
	"github.com/shelfpress/shelfpress/pkg/config"
	"github.com/shelfpress/shelfpress/pkg/errcodes"
	"github.com/shelfpress/shelfpress/pkg/reviews"
	"github.com/shelfpress/shelfpress/pkg/search"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	// Register auth routes and build the session gate from the auth service.
	authService := auth.RegisterRoutes(e, db, cfg.SessionTTL)
	authMiddleware := auth.NewMiddleware(authService)

	// Public reads plus session-gated mutations.
	books.RegisterRoutes(e, db, cfg, authMiddleware)
	reviews.RegisterRoutes(e, db, authMiddleware)
	search.RegisterRoutes(e, db)

	// Uploaded cover images.
	e.Static("/uploads", cfg.UploadDir)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
