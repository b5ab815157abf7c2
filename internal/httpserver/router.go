package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/authz"
	"github.com/Skotchmaster/storefront/internal/metrics"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/ratelimit"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	ProductHandler *ProductHTTP
	UserHandler    *UserHTTP
	Session        *authmw.SessionMiddleware
	LoginLimiter   *ratelimit.Limiter
	Metrics        *metrics.Metrics
	// Ready reports whether the backing store answers.
	Ready func(ctx context.Context) error
}

type Options struct {
	CORSOrigins  []string
	CSRF         bool
	CookieSecure bool
}

// New builds the Echo instance with the middleware chain and all routes.
func New(logger *slog.Logger, opts Options, d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.BodyLimit("1M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderXRequestID, csrf.HeaderName},
		AllowCredentials: true,
	}))
	if opts.CSRF {
		e.Use(csrf.New(csrf.Config{
			Secure: opts.CookieSecure,
			Exempt: []string{"/api/auth/login", "/api/auth/signup"},
		}).Middleware)
	}

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "store is not reachable")
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	api := e.Group("/api")
	s := d.Session

	auth := api.Group("/auth")
	auth.POST("/signup", d.AuthHandler.Signup)
	if d.LoginLimiter != nil {
		auth.POST("/login", d.AuthHandler.Login, d.LoginLimiter.Middleware)
	} else {
		auth.POST("/login", d.AuthHandler.Login)
	}
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.GET("/profile", d.AuthHandler.Profile, s.RequireSession)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/categories", d.ProductHandler.GetCategories)
	products.GET("/search", d.ProductHandler.Search)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("/addproduct", d.ProductHandler.CreateProduct, s.Authorize(authz.Product, authz.Create))
	products.PATCH("/:id", d.ProductHandler.PatchProduct, s.Authorize(authz.Product, authz.Update))
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, s.Authorize(authz.Product, authz.Delete))

	users := api.Group("/users", s.RequireAdmin)
	users.GET("", d.UserHandler.GetUsers)
	users.DELETE("/:id", d.UserHandler.DeleteUser)
}
