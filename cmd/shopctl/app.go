package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/pkg/apiclient"
	"github.com/Skotchmaster/storefront/pkg/authstate"
	"github.com/Skotchmaster/storefront/pkg/cart"
	"github.com/Skotchmaster/storefront/pkg/localstore"
)

var errNotAdmin = errors.New("not authorized as an admin")

type app struct {
	api   *apiclient.Client
	auth  *authstate.Store
	cart  *cart.Store
	log   *slog.Logger
	close func() error
}

func openApp() (*app, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	logger := logging.NewWithWriter(os.Stderr, cfg.LogLevel).With("service", "shopctl")

	storage, err := localstore.OpenSQLite(cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("open state %s: %w", cfg.StatePath, err)
	}
	a, err := newApp(cfg.APIURL, storage, logger, apiclient.WithTimeout(cfg.Timeout))
	if err != nil {
		_ = storage.Close()
		return nil, err
	}
	a.close = storage.Close
	logger.Debug("state_opened", "path", cfg.StatePath, "api", cfg.APIURL)
	return a, nil
}

func newApp(apiURL string, storage localstore.Storage, logger *slog.Logger, opts ...apiclient.Option) (*app, error) {
	api, err := apiclient.New(apiURL, append(opts, apiclient.WithCookieStorage(storage))...)
	if err != nil {
		return nil, err
	}
	auth, err := authstate.NewStore(storage)
	if err != nil {
		return nil, err
	}
	cs, err := cart.NewStore(storage)
	if err != nil {
		return nil, err
	}
	return &app{
		api:   api,
		auth:  auth,
		cart:  cs,
		log:   logger,
		close: func() error { return nil },
	}, nil
}

func (a *app) requireAdmin() error {
	if !a.auth.IsAdmin() {
		return errNotAdmin
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func profileOf(u *apiclient.User) authstate.Profile {
	return authstate.Profile{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func cartProduct(p *apiclient.Product) cart.Product {
	return cart.Product{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Category:    p.Category,
		Image:       p.Image,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
