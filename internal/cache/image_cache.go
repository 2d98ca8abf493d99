package cache

import (
	"context"
	"time"

	"github.com/btecbytes/bytesapi/internal/config"
	"github.com/btecbytes/bytesapi/internal/images"
	"github.com/eko/gocache/lib/v4/codec"
	"github.com/eko/gocache/lib/v4/store"
)

// Cache key prefixes.
const (
	ImageRenditionCachePrefix = "image-rendition-"
)

var _ images.Cache = (*ImageCache)(nil)

// ImageCache keeps encoded image renditions, tagged by the entity that owns the source image.
type ImageCache struct {
	renditions *PrefixedCache[images.Rendition]
	ttl        time.Duration
}

func NewImageCache(cfg *config.CacheConfig) *ImageCache {
	return &ImageCache{
		renditions: NewPrefixedCache[images.Rendition](
			newCacheInstanceByType(cfg),
			cfg.Type,
			ImageRenditionCachePrefix,
		),
		ttl: cfg.TTL,
	}
}

func (c *ImageCache) Get(ctx context.Context, key string) (*images.Rendition, error) {
	rendition, err := c.renditions.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return &rendition, nil
}

func (c *ImageCache) Set(ctx context.Context, owner, key string, rendition *images.Rendition) error {
	return c.renditions.Set(ctx, key, *rendition,
		store.WithTags([]string{owner}),
		store.WithExpiration(c.ttl),
	)
}

func (c *ImageCache) InvalidateOwner(ctx context.Context, owner string) error {
	return c.renditions.Invalidate(ctx, store.WithInvalidateTags([]string{owner}))
}

// Type reports the backing store of the rendition cache.
func (c *ImageCache) Type() config.CacheType {
	return c.renditions.GetType()
}

type Stats struct {
	*codec.Stats
	CacheName string `json:"cacheName"`
}

func (c *ImageCache) GetStats() []*Stats {
	return []*Stats{
		{
			Stats:     c.renditions.GetStats(),
			CacheName: "image-renditions",
		},
	}
}
