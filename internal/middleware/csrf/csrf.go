// Package csrf guards cookie-authenticated writes with a double-submit token.
// It is only installed when CSRF_ENABLED is set.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/apperr"
	"github.com/Skotchmaster/storefront/internal/logging"
)

const (
	CookieName = "XSRF-TOKEN"
	HeaderName = "X-CSRF-Token"
)

type Config struct {
	Secure bool
	TTL    time.Duration
	// Exempt lists route paths (as registered) that skip the check,
	// e.g. login and signup which have no session yet.
	Exempt []string
}

type Guard struct {
	secure bool
	ttl    time.Duration
	exempt map[string]bool
}

func New(cfg Config) *Guard {
	g := &Guard{secure: cfg.Secure, ttl: cfg.TTL, exempt: make(map[string]bool, len(cfg.Exempt))}
	if g.ttl <= 0 {
		g.ttl = 24 * time.Hour
	}
	for _, p := range cfg.Exempt {
		g.exempt[p] = true
	}
	return g
}

func (g *Guard) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if g.exempt[c.Path()] {
			return next(c)
		}

		token, err := g.ensureToken(c)
		if err != nil {
			return err
		}
		if safeMethod(c.Request().Method) {
			c.Response().Header().Set(HeaderName, token)
			return next(c)
		}
		if err := verify(c.Request(), token); err != nil {
			logging.FromContext(c.Request().Context()).Warn("csrf_rejected", "status", 403, "reason", err.Error())
			return err
		}
		return next(c)
	}
}

// ensureToken reuses the cookie token when present and refreshes its expiry.
func (g *Guard) ensureToken(c echo.Context) (string, error) {
	token := ""
	if ck, err := c.Cookie(CookieName); err == nil {
		token = ck.Value
	}
	if token == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("create csrf token: %w", err)
		}
		token = base64.RawURLEncoding.EncodeToString(b)
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Secure:   g.secure,
		MaxAge:   int(g.ttl.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

func verify(r *http.Request, token string) error {
	if !sameOrigin(r) {
		return apperr.Forbidden("invalid origin")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(r.Header.Get(HeaderName))) != 1 {
		return apperr.Forbidden("invalid CSRF token")
	}
	return nil
}

func safeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = r.Header.Get("Referer")
	}
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	scheme := "http"
	switch {
	case r.Header.Get("X-Forwarded-Proto") != "":
		scheme = r.Header.Get("X-Forwarded-Proto")
	case r.TLS != nil:
		scheme = "https"
	}
	return strings.EqualFold(u.Scheme, scheme) && strings.EqualFold(u.Host, r.Host)
}
