package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/btecbytes/bytesapi/internal/config"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/codec"
	"github.com/eko/gocache/lib/v4/store"
	go_store "github.com/eko/gocache/store/go_cache/v4"
	redis_store "github.com/eko/gocache/store/redis/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// PrefixedCache wraps a cache.Cache, adds a prefix to all keys and stores values as JSON.
type PrefixedCache[T any] struct {
	cache     *cache.Cache[any]
	cacheType config.CacheType
	prefix    string
}

// NewPrefixedCache creates a new prefixed cache wrapper.
func NewPrefixedCache[T any](c *cache.Cache[any], cacheType config.CacheType, prefix string) *PrefixedCache[T] {
	return &PrefixedCache[T]{
		cache:     c,
		cacheType: cacheType,
		prefix:    prefix,
	}
}

func (p *PrefixedCache[T]) key(key any) string {
	return p.prefix + fmt.Sprintf("%v", key)
}

// Get retrieves a value from the cache with the prefixed key.
func (p *PrefixedCache[T]) Get(ctx context.Context, key any) (T, error) {
	var result T
	raw, err := p.cache.Get(ctx, p.key(key))
	if err != nil {
		return result, err
	}

	// the memory store hands back what was stored, redis returns a string
	var data []byte
	switch v := raw.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return result, fmt.Errorf("unexpected cache value type %T", raw)
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return result, err
	}
	return result, nil
}

// Set stores a value in the cache with the prefixed key.
func (p *PrefixedCache[T]) Set(ctx context.Context, key any, object T, options ...store.Option) error {
	data, err := json.Marshal(object)
	if err != nil {
		return err
	}
	return p.cache.Set(ctx, p.key(key), data, options...)
}

// Invalidate removes values from the cache matching the given options, usually tags.
func (p *PrefixedCache[T]) Invalidate(ctx context.Context, options ...store.InvalidateOption) error {
	return p.cache.Invalidate(ctx, options...)
}

// GetType returns the cache type.
func (p *PrefixedCache[T]) GetType() config.CacheType {
	return p.cacheType
}

// GetStats returns the cache statistics.
func (p *PrefixedCache[T]) GetStats() *codec.Stats {
	return p.cache.GetCodec().GetStats()
}

func newCacheInstanceByType(cfg *config.CacheConfig) *cache.Cache[any] {
	switch cfg.Type {
	case config.CacheTypeRedis:
		return newRedisCache[any](cfg)
	default:
		return newMemoryCache[any]()
	}
}

func newMemoryCache[T any]() *cache.Cache[T] {
	// entries carry their own expiration, the janitor only sweeps expired ones
	gocacheClient := gocache.New(gocache.NoExpiration, 10*time.Minute)
	gocacheStore := go_store.NewGoCache(gocacheClient)
	return cache.New[T](gocacheStore)
}

func newRedisCache[T any](cfg *config.CacheConfig) *cache.Cache[T] {
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	redisStore := redis_store.NewRedis(redisClient)
	return cache.New[T](redisStore)
}
