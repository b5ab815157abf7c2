package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) IsAdmin() bool { return u.Role == "admin" }

type Product struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type ProductInput struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
}

// ProductPatch only sends the fields that are set.
type ProductPatch struct {
	Title       *string  `json:"title,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Image       *string  `json:"image,omitempty"`
}

type SearchResult struct {
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Size     int       `json:"size"`
	Products []Product `json:"products"`
}

func (c *Client) Signup(ctx context.Context, in SignupInput) (*User, error) {
	var out struct {
		NewUser User `json:"newUser"`
	}
	if err := c.mutate(ctx, http.MethodPost, "/api/auth/signup", in, &out, TagUser); err != nil {
		return nil, err
	}
	return &out.NewUser, nil
}

// Login stores the session cookie and drops every cached query.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	in := map[string]string{"email": email, "password": password}
	var out struct {
		User User `json:"user"`
	}
	if err := c.mutate(ctx, http.MethodPost, "/api/auth/login", in, &out, allTags...); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.mutate(ctx, http.MethodPost, "/api/auth/logout", nil, nil, allTags...)
}

func (c *Client) Profile(ctx context.Context) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.query(ctx, TagUser, "/api/auth/profile", &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var out struct {
		AllProducts []Product `json:"allProducts"`
	}
	if err := c.query(ctx, TagProduct, "/api/products", &out); err != nil {
		return nil, err
	}
	return out.AllProducts, nil
}

func (c *Client) Product(ctx context.Context, id string) (*Product, error) {
	var out Product
	if err := c.query(ctx, TagProduct, "/api/products/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var out struct {
		Categories []string `json:"categories"`
	}
	if err := c.query(ctx, TagProduct, "/api/products/categories", &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (c *Client) SearchProducts(ctx context.Context, q string, page, size int) (*SearchResult, error) {
	v := url.Values{}
	v.Set("q", q)
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		v.Set("size", strconv.Itoa(size))
	}
	var out SearchResult
	if err := c.query(ctx, TagProduct, "/api/products/search?"+v.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	var out struct {
		NewProduct Product `json:"newProduct"`
	}
	if err := c.mutate(ctx, http.MethodPost, "/api/products/addproduct", in, &out, TagProduct); err != nil {
		return nil, err
	}
	return &out.NewProduct, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*Product, error) {
	var out struct {
		Product Product `json:"product"`
	}
	if err := c.mutate(ctx, http.MethodPatch, "/api/products/"+url.PathEscape(id), patch, &out, TagProduct); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) (*Product, error) {
	var out struct {
		Product Product `json:"product"`
	}
	if err := c.mutate(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), nil, &out, TagProduct); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

func (c *Client) Users(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.query(ctx, TagUser, "/api/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil, nil, TagUser)
}
