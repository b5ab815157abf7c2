package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := NewRedis(context.Background(), Config{Addr: mr.Addr(), TTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedis_SetGet(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	var got []string
	ok, err := c.Get(ctx, "categories", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, TagProducts, 0, "categories", []string{"hats", "shoes"}))
	ok, err = c.Get(ctx, "categories", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"hats", "shoes"}, got)

	mr.FastForward(2 * time.Minute)
	ok, err = c.Get(ctx, "categories", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_InvalidateTag(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, TagProducts, 0, "products:all", []int{1, 2}))
	require.NoError(t, c.Set(ctx, TagProducts, 0, "categories", []string{"a"}))
	require.NoError(t, c.Set(ctx, "other", 0, "misc", "keep"))

	require.NoError(t, c.InvalidateTag(ctx, TagProducts))

	assert.False(t, mr.Exists("storefront:products:all"))
	assert.False(t, mr.Exists("storefront:categories"))
	assert.False(t, mr.Exists("storefront:tag:products"))

	var s string
	ok, err := c.Get(ctx, "misc", &s)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "keep", s)
}

func TestRedis_SetAfterInvalidateIsRejected(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	gen, err := c.Generation(ctx, TagProducts)
	require.NoError(t, err)
	assert.Zero(t, gen)

	require.NoError(t, c.InvalidateTag(ctx, TagProducts))

	err = c.Set(ctx, TagProducts, gen, "products:all", []int{1})
	assert.ErrorIs(t, err, ErrStale)
	assert.False(t, mr.Exists("storefront:products:all"))

	gen, err = c.Generation(ctx, TagProducts)
	require.NoError(t, err)
	assert.EqualValues(t, 1, gen)
	require.NoError(t, c.Set(ctx, TagProducts, gen, "products:all", []int{1, 2}))

	var got []int
	ok, err := c.Get(ctx, "products:all", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2}, got)
}

func TestRedis_GenerationIsPerTag(t *testing.T) {
	c, _ := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.InvalidateTag(ctx, "other"))
	require.NoError(t, c.Set(ctx, TagProducts, 0, "categories", []string{"a"}))
}

func TestNewRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(context.Background(), Config{Addr: addr})
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	require.NoError(t, c.Set(context.Background(), TagProducts, 0, "k", 1))
	var v int
	ok, err := c.Get(context.Background(), "k", &v)
	require.NoError(t, err)
	assert.False(t, ok)
}
