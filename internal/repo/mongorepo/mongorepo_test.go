package mongorepo

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func newIntegrationRepo(t *testing.T) *MongoRepo {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URL")
	if uri == "" {
		t.Skip("MONGO_TEST_URL is required for tests")
	}

	ctx := context.Background()
	client, err := db.OpenMongo(ctx, uri)
	require.NoError(t, err)

	dbName := "storefront_test_" + uuid.NewString()[:8]
	r, err := New(ctx, client, dbName)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Database(dbName).Drop(ctx)
		_ = r.Close(ctx)
	})
	return r
}

func TestObjectID_MalformedIsNotFound(t *testing.T) {
	_, err := objectID("not-hex")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestMongoRepo_Users(t *testing.T) {
	r := newIntegrationRepo(t)
	ctx := context.Background()

	u := &models.User{Name: "alice", Email: "alice@example.com", PasswordHash: "h", Role: models.RoleAdmin}
	require.NoError(t, r.CreateUser(ctx, u))
	require.Len(t, u.ID, 24)

	err := r.CreateUser(ctx, &models.User{Name: "bob", Email: "alice@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, repo.ErrDuplicate)

	got, err := r.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin())

	require.NoError(t, r.DeleteUser(ctx, u.ID))
	_, err = r.UserByEmail(ctx, "alice@example.com")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestMongoRepo_Products(t *testing.T) {
	r := newIntegrationRepo(t)
	ctx := context.Background()

	p := &models.Product{Title: "red shoe", Price: 10, Description: "a very red shoe", Category: "shoes", Image: "http://x/a.png"}
	require.NoError(t, r.CreateProduct(ctx, p))

	title := "green shoe"
	upd, err := r.UpdateProduct(ctx, p.ID, models.ProductPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "green shoe", upd.Title)
	assert.Equal(t, 10.0, upd.Price)

	cats, err := r.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"shoes"}, cats)

	del, err := r.DeleteProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, del.ID)

	_, err = r.ProductByID(ctx, p.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
