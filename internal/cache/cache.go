// Package cache is a read-through cache for catalog queries with tag-based
// invalidation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const TagProducts = "products"

// ErrStale is returned by Set when tag was invalidated after gen was read.
var ErrStale = errors.New("cache: tag invalidated since read")

// Readers take the tag generation before loading from the source of truth and
// hand it back to Set, so a load that raced a write is never stored.
type Cache interface {
	// Get decodes the cached value into dst and reports whether it was present.
	Get(ctx context.Context, key string, dst any) (bool, error)
	// Generation is the current invalidation counter of tag.
	Generation(ctx context.Context, tag string) (int64, error)
	// Set stores value under key and registers key with tag, unless tag has
	// moved past gen.
	Set(ctx context.Context, tag string, gen int64, key string, value any) error
	// InvalidateTag bumps the generation of tag and drops its keys.
	InvalidateTag(ctx context.Context, tag string) error
	Close() error
}

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

type Redis struct {
	Db     *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedis(ctx context.Context, cfg Config) (*Redis, error) {
	const op = "cache.NewRedis"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "storefront"
	}
	return &Redis{Db: db, ttl: cfg.TTL, prefix: prefix}, nil
}

func (c *Redis) key(k string) string { return c.prefix + ":" + k }
func (c *Redis) tagKey(t string) string { return c.prefix + ":tag:" + t }
func (c *Redis) genKey(t string) string { return c.prefix + ":gen:" + t }

func (c *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	const op = "cache.Get"
	val, err := c.Db.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(val, dst); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

func (c *Redis) Generation(ctx context.Context, tag string) (int64, error) {
	const op = "cache.Generation"
	gen, err := c.Db.Get(ctx, c.genKey(tag)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return gen, nil
}

func (c *Redis) Set(ctx context.Context, tag string, gen int64, key string, value any) error {
	const op = "cache.Set"
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	genKey := c.genKey(tag)
	err = c.Db.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, c.key(key), data, c.ttl)
			p.SAdd(ctx, c.tagKey(tag), c.key(key))
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStale), errors.Is(err, redis.TxFailedErr):
		return ErrStale
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// InvalidateTag bumps the generation first so that a Set still holding the
// old generation fails even if it lands after the keys are deleted.
func (c *Redis) InvalidateTag(ctx context.Context, tag string) error {
	const op = "cache.InvalidateTag"
	if err := c.Db.Incr(ctx, c.genKey(tag)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	keys, err := c.Db.SMembers(ctx, c.tagKey(tag)).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	keys = append(keys, c.tagKey(tag))
	if err := c.Db.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Redis) Close() error {
	return c.Db.Close()
}

// Noop never stores anything; every Get is a miss.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Noop) Generation(context.Context, string) (int64, error) { return 0, nil }
func (Noop) Set(context.Context, string, int64, string, any) error { return nil }
func (Noop) InvalidateTag(context.Context, string) error { return nil }
func (Noop) Close() error { return nil }
