package auth

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/apperr"
	"github.com/Skotchmaster/storefront/internal/authz"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

const userKey = "user"

type ctxKey struct{}

type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*models.User, error)
}

type SessionMiddleware struct {
	Auth   Authenticator
	Cookie tokens.CookieOptions
	Policy authz.Policy
}

type ValidatorFunc func(user *models.User) error

func (m *SessionMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireSessionWithValidator(next, nil)
}

// RequireAdmin resolves the session and lets only admins through.
func (m *SessionMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireSessionWithValidator(next, authz.RequireAdmin)
}

// Authorize checks the policy for resource and action once the session is resolved.
func (m *SessionMiddleware) Authorize(resource authz.Resource, action authz.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return m.requireSessionWithValidator(next, func(user *models.User) error {
			return m.Policy.Allowed(user, resource, action)
		})
	}
}

func (m *SessionMiddleware) requireSessionWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "auth.session")

		var raw string
		if cookie, err := c.Cookie(m.Cookie.Name); err == nil {
			raw = cookie.Value
		}

		user, err := m.Auth.Authenticate(ctx, raw)
		if err != nil {
			if raw != "" && apperr.Status(err) == http.StatusUnauthorized {
				c.SetCookie(m.Cookie.Delete())
			}
			return err
		}

		if validator != nil {
			if verr := validator(user); verr != nil {
				l.Warn("access_denied", "status", apperr.Status(verr), "user_id", user.ID, "reason", apperr.Detail(verr))
				return verr
			}
		}

		c.Set(userKey, user)
		c.SetRequest(c.Request().WithContext(context.WithValue(ctx, ctxKey{}, user)))
		return next(c)
	}
}

// UserFrom returns the user resolved by the session middleware, or nil.
func UserFrom(c echo.Context) *models.User {
	if u, ok := c.Get(userKey).(*models.User); ok {
		return u
	}
	return UserFromContext(c.Request().Context())
}

func UserFromContext(ctx context.Context) *models.User {
	if u, ok := ctx.Value(ctxKey{}).(*models.User); ok {
		return u
	}
	return nil
}
