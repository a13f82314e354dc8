package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shelfpress/shelfpress/pkg/errcodes"
	"github.com/shelfpress/shelfpress/pkg/models"
)

// Context keys for storing session data on the Echo context.
const (
	ContextKeyAdmin        = "admin"
	ContextKeySessionToken = "session_token"
)

// Middleware provides the session gate applied to admin mutation routes.
type Middleware struct {
	authService *Service
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(authService *Service) *Middleware {
	return &Middleware{
		authService: authService,
	}
}

// Authenticate extracts the session token from the cookie or the
// Authorization header and resolves it to an admin. Requests without a live
// session fail with 401 before reaching the handler.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		token := sessionToken(c)
		if token == "" {
			return errcodes.Unauthorized("Authentication required")
		}

		admin, err := m.authService.ValidateSession(ctx, token)
		if err != nil {
			return err
		}

		c.Set(ContextKeyAdmin, admin)
		c.Set(ContextKeySessionToken, token)

		return next(c)
	}
}

func sessionToken(c echo.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	return ""
}

// AdminFromContext retrieves the authenticated admin from the Echo context.
func AdminFromContext(c echo.Context) (*models.AdminUser, bool) {
	admin, ok := c.Get(ContextKeyAdmin).(*models.AdminUser)
	return admin, ok
}
