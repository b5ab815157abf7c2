package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/apperr"
	"github.com/Skotchmaster/storefront/internal/cache"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/events/eventstest"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/repo/gormrepo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type testEnv struct {
	repo     *gormrepo.GormRepo
	events   *eventstest.Recorder
	auth     *AuthService
	products *ProductService
	users    *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctx := context.Background()
	gdb, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	r, err := gormrepo.New(ctx, gdb)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close(ctx) })

	rec := &eventstest.Recorder{}
	return &testEnv{
		repo:   r,
		events: rec,
		auth: &AuthService{
			Users:             r,
			Tokens:            &tokens.Issuer{Secret: []byte("test-jwt-secret"), TTL: 24 * time.Hour},
			Events:            rec,
			AllowRoleOnSignup: true,
		},
		products: &ProductService{Repo: r, Search: search.Noop{}, Cache: cache.Noop{}, Events: rec},
		users:    &UserService{Repo: r, Events: rec},
	}
}

func signupReq(name, email string) transport.SignupRequest {
	return transport.SignupRequest{Name: name, Email: email, Password: "Abcdef1!"}
}

func TestAuthService_Signup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.auth.Signup(ctx, signupReq("  Alice ", " Alice@Example.com "))
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Name)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.NotEqual(t, "Abcdef1!", u.PasswordHash)

	_, err = env.auth.Signup(ctx, signupReq("alice", "ALICE@example.com"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, msgUserExists, apperr.Detail(err))

	users, err := env.repo.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, []string{events.UserSignedUp}, env.events.Types())
}

func TestAuthService_Signup_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  transport.SignupRequest
	}{
		{"empty name", transport.SignupRequest{Email: "a@b.co", Password: "Abcdef1!"}},
		{"blank name", transport.SignupRequest{Name: "   ", Email: "a@b.co", Password: "Abcdef1!"}},
		{"bad email", transport.SignupRequest{Name: "bob", Email: "bob", Password: "Abcdef1!"}},
		{"weak password", transport.SignupRequest{Name: "bob", Email: "bob@b.co", Password: "abcdefgh"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Signup(ctx, tt.req)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestAuthService_Signup_Role(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := signupReq("root", "root@example.com")
	req.Role = "admin"
	u, err := env.auth.Signup(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	env.auth.AllowRoleOnSignup = false
	req = signupReq("mallory", "mallory@example.com")
	req.Role = "admin"
	u, err = env.auth.Signup(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, u.Role)
}

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.auth.Signup(ctx, signupReq("alice", "alice@example.com"))
	require.NoError(t, err)

	res, err := env.auth.Login(ctx, " ALICE@example.com", "Abcdef1!")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), res.ExpiresAt, 5*time.Second)

	claims, err := env.auth.Tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)

	_, errWrongPw := env.auth.Login(ctx, "alice@example.com", "Wrong1!pw")
	_, errNoUser := env.auth.Login(ctx, "nobody@example.com", "Abcdef1!")
	for _, err := range []error{errWrongPw, errNoUser} {
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
		assert.Equal(t, msgInvalidCredentials, apperr.Detail(err))
	}

	_, err = env.auth.Login(ctx, "not-an-email", "x")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = env.auth.Login(ctx, "alice@example.com", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAuthService_Login_StrictPassword(t *testing.T) {
	env := newTestEnv(t)
	env.auth.StrictLoginPassword = true

	_, err := env.auth.Login(context.Background(), "alice@example.com", "weak")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAuthService_Authenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.auth.Signup(ctx, signupReq("alice", "alice@example.com"))
	require.NoError(t, err)
	res, err := env.auth.Login(ctx, "alice@example.com", "Abcdef1!")
	require.NoError(t, err)

	got, err := env.auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = env.auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = env.auth.Authenticate(ctx, res.Token+"x")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	other := &tokens.Issuer{Secret: []byte("other"), TTL: time.Hour}
	forged, _, err := other.Sign(u.ID)
	require.NoError(t, err)
	_, err = env.auth.Authenticate(ctx, forged)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	require.NoError(t, env.repo.DeleteUser(ctx, u.ID))
	_, err = env.auth.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func createReq(title string, price float64) transport.CreateProductRequest {
	return transport.CreateProductRequest{
		Title:       title,
		Price:       &price,
		Description: "a perfectly fine product",
		Category:    "misc",
		Image:       "https://cdn.example.com/p.png",
	}
}

func TestProductService_CRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, err := env.products.Create(ctx, createReq("  Red Shoe ", 10))
	require.NoError(t, err)
	assert.Equal(t, "red shoe", p.Title)
	assert.NotEmpty(t, p.ID)

	got, err := env.products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = env.products.Get(ctx, "does-not-exist")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	price := 12.0
	upd, err := env.products.Update(ctx, p.ID, transport.PatchProductRequest{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 12.0, upd.Price)
	assert.Equal(t, "red shoe", upd.Title)

	neg := -3.0
	_, err = env.products.Update(ctx, p.ID, transport.PatchProductRequest{Price: &neg})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = env.products.Update(ctx, "missing", transport.PatchProductRequest{Price: &price})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	del, err := env.products.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, del.ID)
	_, err = env.products.Delete(ctx, p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Equal(t, []string{events.ProductCreated, events.ProductUpdated, events.ProductDeleted}, env.events.Types())
}

func TestProductService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.products.Create(ctx, createReq("abc", 10))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = env.products.Create(ctx, createReq("valid title", -1))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	req := createReq("valid title", 1)
	req.Price = nil
	_, err = env.products.Create(ctx, req)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	list, err := env.products.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProductService_CacheInvalidatedOnWrite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	c, err := cache.NewRedis(ctx, cache.Config{Addr: mr.Addr(), TTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	env.products.Cache = c

	_, err = env.products.Create(ctx, createReq("first item", 1))
	require.NoError(t, err)

	list, err := env.products.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	cats, err := env.products.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"misc"}, cats)
	assert.True(t, mr.Exists("storefront:"+keyAllProducts))

	_, err = env.products.Create(ctx, createReq("second item", 2))
	require.NoError(t, err)
	assert.False(t, mr.Exists("storefront:"+keyAllProducts))

	list, err = env.products.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

// blockingList parks the first ListProducts call after it has read the rows.
type blockingList struct {
	repo.Products
	once    sync.Once
	loaded  chan struct{}
	release chan struct{}
}

func (b *blockingList) ListProducts(ctx context.Context) ([]models.Product, error) {
	items, err := b.Products.ListProducts(ctx)
	b.once.Do(func() {
		close(b.loaded)
		<-b.release
	})
	return items, err
}

func TestProductService_WriteDuringListLoadIsNotCachedStale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	c, err := cache.NewRedis(ctx, cache.Config{Addr: mr.Addr(), TTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	env.products.Cache = c

	slow := &blockingList{Products: env.repo, loaded: make(chan struct{}), release: make(chan struct{})}
	env.products.Repo = slow

	type result struct {
		items []models.Product
		err   error
	}
	done := make(chan result, 1)
	go func() {
		items, err := env.products.List(ctx)
		done <- result{items, err}
	}()

	<-slow.loaded
	_, err = env.products.Create(ctx, createReq("fresh item", 3))
	require.NoError(t, err)
	close(slow.release)

	first := <-done
	require.NoError(t, first.err)
	assert.Empty(t, first.items)
	assert.False(t, mr.Exists("storefront:"+keyAllProducts))

	list, err := env.products.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "fresh item", list[0].Title)
	assert.True(t, mr.Exists("storefront:"+keyAllProducts))
}

func TestProductService_Search(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, _, err := env.products.SearchProducts(ctx, "  ", 0, 10)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, _, err = env.products.SearchProducts(ctx, "shoe", 0, 10)
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
}

func TestUserService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	adminReq := signupReq("root", "root@example.com")
	adminReq.Role = "admin"
	admin, err := env.auth.Signup(ctx, adminReq)
	require.NoError(t, err)
	customer, err := env.auth.Signup(ctx, signupReq("alice", "alice@example.com"))
	require.NoError(t, err)

	err = env.users.Delete(ctx, admin, admin.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Cannot delete admin user", apperr.Detail(err))
	_, err = env.repo.UserByID(ctx, admin.ID)
	require.NoError(t, err)

	err = env.users.Delete(ctx, customer, customer.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	require.NoError(t, env.users.Delete(ctx, admin, customer.ID))
	err = env.users.Delete(ctx, admin, customer.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	users, err := env.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Contains(t, env.events.Types(), events.UserDeleted)
}

