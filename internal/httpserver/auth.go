package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/apperr"
	"github.com/Skotchmaster/storefront/internal/logging"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type AuthHTTP struct {
	Svc    *service.AuthService
	Cookie tokens.CookieOptions
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_signup")

	var req transport.SignupRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_error", "status", 400, "error", err)
		return invalidBody(err)
	}

	user, err := h.Svc.Signup(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "SignUp Successfully",
		"newUser": user,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return invalidBody(err)
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(h.Cookie.Create(res.Token, res.ExpiresAt))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login Successfully!",
		"user":    res.User,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	c.SetCookie(h.Cookie.Delete())
	logging.FromContext(c.Request().Context()).Info("successful_logout")
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Logout Successfully!",
	})
}

func (h *AuthHTTP) Profile(c echo.Context) error {
	user := authmw.UserFrom(c)
	if user == nil {
		return apperr.Unauthenticated("Not authorized, no token")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "User Profiled Fetch Successfully",
		"user":    user,
	})
}
