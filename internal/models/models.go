package models

import (
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)"      json:"_id"`
	Name         string    `gorm:"not null"                         json:"name"`
	Email        string    `gorm:"uniqueIndex;not null"             json:"email"`
	PasswordHash string    `gorm:"column:password;not null"         json:"-"`
	Role         Role      `gorm:"type:varchar(16);not null;default:customer" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

type Product struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	Title       string    `gorm:"not null"                    json:"title"`
	Price       float64   `gorm:"not null"                    json:"price"`
	Description string    `gorm:"not null"                    json:"description"`
	Category    string    `gorm:"index;not null"              json:"category"`
	Image       string    `gorm:"not null"                    json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductPatch carries only the fields a partial update provided.
type ProductPatch struct {
	Title       *string
	Price       *float64
	Description *string
	Category    *string
	Image       *string
}

func (p ProductPatch) Apply(prod *Product) {
	if p.Title != nil {
		prod.Title = *p.Title
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
	if p.Category != nil {
		prod.Category = *p.Category
	}
	if p.Image != nil {
		prod.Image = *p.Image
	}
}
