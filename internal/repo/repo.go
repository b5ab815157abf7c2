// Package repo defines the persistence contract shared by the MongoDB and
// GORM backends.
package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/storefront/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type Users interface {
	// CreateUser assigns the id and timestamps; ErrDuplicate when the email is taken.
	CreateUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type Products interface {
	// ListProducts returns the whole catalog, newest first.
	ListProducts(ctx context.Context) ([]models.Product, error)
	ProductByID(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) (*models.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

type Store interface {
	Users
	Products
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
