package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CookieName is the name of the session cookie.
const CookieName = "shelfpress_session"

type handler struct {
	authService *Service
}

// login handles admin login.
func (h *handler) login(c echo.Context) error {
	ctx := c.Request().Context()

	params := LoginPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	admin, err := h.authService.Authenticate(ctx, params.Email, params.Password)
	if err != nil {
		return err
	}

	session, err := h.authService.CreateSession(ctx, admin)
	if err != nil {
		return errors.WithStack(err)
	}

	c.SetCookie(sessionCookie(c, session.Token, int(h.authService.sessionTTL.Seconds())))

	return errors.WithStack(c.JSON(http.StatusOK, admin))
}

// logout invalidates the current session immediately.
func (h *handler) logout(c echo.Context) error {
	ctx := c.Request().Context()

	token, _ := c.Get(ContextKeySessionToken).(string)
	if token != "" {
		if err := h.authService.DeleteSession(ctx, token); err != nil {
			return errors.WithStack(err)
		}
	}

	// Clear cookie by setting MaxAge to -1
	c.SetCookie(sessionCookie(c, "", -1))

	return errors.WithStack(c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"}))
}

// me returns the current authenticated admin.
func (h *handler) me(c echo.Context) error {
	admin, ok := AdminFromContext(c)
	if !ok {
		return errors.New("admin missing from context")
	}

	return errors.WithStack(c.JSON(http.StatusOK, admin))
}

func sessionCookie(c echo.Context, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Request().TLS != nil || c.Request().Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
	}
}
