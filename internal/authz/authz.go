// Package authz decides whether a resolved identity may perform an action on
// a resource. It runs after session verification and knows nothing about routes.
package authz

import (
	"github.com/Skotchmaster/storefront/internal/apperr"
	"github.com/Skotchmaster/storefront/internal/models"
)

type Resource string

type Action string

const (
	Product Resource = "product"
	User    Resource = "user"
)

const (
	Read   Action = "read"
	List   Action = "list"
	Create Action = "create"
	Update Action = "update"
	Delete Action = "delete"
)

type Policy struct {
	// ProductWriteAnyUser lets every authenticated user create, update and
	// delete products.
	ProductWriteAnyUser bool
}

// Allowed returns nil when identity may perform action on resource.
// A nil identity is unauthenticated.
func (p Policy) Allowed(identity *models.User, resource Resource, action Action) error {
	if resource == Product && action == Read {
		return nil
	}
	if identity == nil {
		return apperr.Unauthenticated("Not authorized, no token")
	}

	switch resource {
	case Product:
		switch action {
		case Create, Update, Delete:
			if identity.IsAdmin() || p.ProductWriteAnyUser {
				return nil
			}
		}
	case User:
		switch action {
		case List, Delete:
			return RequireAdmin(identity)
		}
	}
	return errNotAdmin
}

var errNotAdmin = apperr.Forbidden("Not authorized as an admin")

// RequireAdmin is the plain role gate used for user administration.
func RequireAdmin(identity *models.User) error {
	if identity == nil {
		return apperr.Unauthenticated("Not authorized, no token")
	}
	if !identity.IsAdmin() {
		return errNotAdmin
	}
	return nil
}

// CanDeleteUser applies the target-dependent rule for user deletion.
func (p Policy) CanDeleteUser(identity, target *models.User) error {
	if err := p.Allowed(identity, User, Delete); err != nil {
		return err
	}
	if target.IsAdmin() {
		return apperr.Validation("Cannot delete admin user")
	}
	return nil
}
