package transport

import "github.com/Skotchmaster/storefront/internal/models"

type SignupRequest struct {
	Name     string `json:"name"     validate:"required,min=3,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,strongpassword"`
	Role     string `json:"role"     validate:"omitempty,oneof=customer admin"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// StrictLoginRequest re-applies the signup password policy on login.
type StrictLoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,strongpassword"`
}

type CreateProductRequest struct {
	Title       string   `json:"title"       validate:"required,min=5,max=20"`
	Price       *float64 `json:"price"       validate:"required,gte=0"`
	Description string   `json:"description" validate:"required,min=10,max=500"`
	Category    string   `json:"category"    validate:"required,min=3,max=50"`
	Image       string   `json:"image"       validate:"required,http_url"`
}

func (r CreateProductRequest) Product() models.Product {
	p := models.Product{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Image:       r.Image,
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	return p
}

type PatchProductRequest struct {
	Title       *string  `json:"title"       validate:"omitempty,min=5,max=20"`
	Price       *float64 `json:"price"       validate:"omitempty,gte=0"`
	Description *string  `json:"description" validate:"omitempty,min=10,max=500"`
	Category    *string  `json:"category"    validate:"omitempty,min=3,max=50"`
	Image       *string  `json:"image"       validate:"omitempty,http_url"`
}

func (r PatchProductRequest) Patch() models.ProductPatch {
	return models.ProductPatch{
		Title:       r.Title,
		Price:       r.Price,
		Description: r.Description,
		Category:    r.Category,
		Image:       r.Image,
	}
}
