package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON values under string keys.
type Cache interface {
	// GetJSON decodes the value into dst. ok is false on a miss.
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type Config struct {
	Enabled   bool          `mapstructure:"enabled"`
	Address   string        `mapstructure:"address"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	Namespace string        `mapstructure:"namespace"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// New returns a Dummy when the cache is disabled, otherwise a connected RedisCache.
func New(ctx context.Context, cfg Config) (Cache, error) {
	if !cfg.Enabled {
		return Dummy{}, nil
	}

	var opts *redis.Options
	if strings.HasPrefix(cfg.Address, "redis://") || strings.HasPrefix(cfg.Address, "rediss://") {
		parsed, err := redis.ParseURL(cfg.Address)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: cfg.Address}
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB > 0 {
		opts.DB = cfg.DB
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
	}

	return NewRedisCache(rdb, cfg.Namespace), nil
}

type RedisCache struct {
	rdb       *redis.Client
	namespace string
}

func NewRedisCache(rdb *redis.Client, namespace string) *RedisCache {
	return &RedisCache{rdb: rdb, namespace: namespace}
}

func (c *RedisCache) key(key string) string {
	return namespaced(c.namespace, key)
}

func namespaced(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return namespace + ":" + key
}

func (c *RedisCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	s, err := c.rdb.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dst); err != nil {
		// corrupt entry, treat as a miss
		_ = c.rdb.Del(ctx, c.key(key)).Err()
		return false, nil
	}
	return true, nil
}

func (c *RedisCache) SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(key), b, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.key(k))
	}
	return c.rdb.Del(ctx, full...).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// Dummy is used when caching is disabled. Every read is a miss.
type Dummy struct{}

func (Dummy) GetJSON(context.Context, string, any) (bool, error)        { return false, nil }
func (Dummy) SetJSON(context.Context, string, any, time.Duration) error { return nil }
func (Dummy) Del(context.Context, ...string) error                      { return nil }
