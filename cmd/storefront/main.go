package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/storefront/internal/authz"
	"github.com/Skotchmaster/storefront/internal/cache"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/middleware/ratelimit"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/repo/gormrepo"
	"github.com/Skotchmaster/storefront/internal/repo/mongorepo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", "storefront")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := openStore(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("store open: %v", err)
	}

	publisher := events.New(cfg.KafkaBrokers)
	idx := openSearch(cfg, logger)
	readCache := openCache(cfg, logger)

	issuer := &tokens.Issuer{Secret: []byte(cfg.JWTSecret), TTL: cfg.SessionTTL}
	cookie := tokens.CookieOptions{
		Name:     cfg.CookieName,
		Secure:   cfg.CookieSecure,
		SameSite: tokens.ParseSameSite(cfg.CookieSameSite),
	}
	policy := authz.Policy{ProductWriteAnyUser: cfg.ProductWriteAnyUser}

	authSvc := &service.AuthService{
		Users:               store,
		Tokens:              issuer,
		Events:              publisher,
		AllowRoleOnSignup:   cfg.SignupAllowRole,
		StrictLoginPassword: cfg.LoginStrictPassword,
	}
	productSvc := &service.ProductService{Repo: store, Search: idx, Cache: readCache, Events: publisher}
	userSvc := &service.UserService{Repo: store, Policy: policy, Events: publisher}

	e := httpserver.New(logger, httpserver.Options{
		CORSOrigins:  cfg.CORSOrigins,
		CSRF:         cfg.CSRFEnabled,
		CookieSecure: cfg.CookieSecure,
	}, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc, Cookie: cookie},
		ProductHandler: &httpserver.ProductHTTP{Svc: productSvc},
		UserHandler:    &httpserver.UserHTTP{Svc: userSvc},
		Session:        &authmw.SessionMiddleware{Auth: authSvc, Cookie: cookie, Policy: policy},
		LoginLimiter:   ratelimit.New(cfg.LoginRate, cfg.LoginBurst),
		Metrics:        metrics.New(),
		Ready:          store.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_started", "addr", srv.Addr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_failed", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Warn("kafka_close_failed", "error", err)
	}
	if err := readCache.Close(); err != nil {
		logger.Warn("cache_close_failed", "error", err)
	}
	if err := store.Close(shutdownCtx); err != nil {
		logger.Warn("store_close_failed", "error", err)
	}

	logger.Info("server_stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (repo.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := db.OpenMongo(ctx, cfg.MongoURL)
		if err != nil {
			return nil, err
		}
		return mongorepo.New(ctx, client, cfg.MongoDB)
	case config.DriverPostgres:
		gdb, err := db.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return gormrepo.New(ctx, gdb)
	case config.DriverSQLite:
		gdb, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return gormrepo.New(ctx, gdb)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func openSearch(cfg *config.Config, logger *slog.Logger) search.Index {
	if cfg.ESURL == "" {
		logger.Info("search_disabled", "reason", "ES_URL is empty")
		return search.Noop{}
	}
	client, err := search.NewClient(search.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
	if err != nil {
		logger.Warn("search_disabled", "error", err)
		return search.Noop{}
	}
	return search.NewES(client, cfg.ESIndex)
}

func openCache(cfg *config.Config, logger *slog.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		return cache.Noop{}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := cache.NewRedis(ctx, cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
	})
	if err != nil {
		logger.Warn("cache_disabled", "error", err)
		return cache.Noop{}
	}
	return c
}
