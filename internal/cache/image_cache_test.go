package cache

import (
	"context"
	"testing"
	"time"

	"github.com/btecbytes/bytesapi/internal/config"
	"github.com/btecbytes/bytesapi/internal/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestImageCache() *ImageCache {
	return NewImageCache(&config.CacheConfig{Type: config.CacheTypeMemory, TTL: time.Minute})
}

func TestImageCacheSetGet(t *testing.T) {
	ctx := context.Background()
	c := newTestImageCache()

	want := &images.Rendition{ContentType: "image/png", Data: []byte{1, 2, 3}, Width: 2, Height: 1}
	require.NoError(t, c.Set(ctx, "item-1", "item-1-10x10", want))

	got, err := c.Get(ctx, "item-1-10x10")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = c.Get(ctx, "item-1-20x20")
	assert.Error(t, err)
}

func TestImageCacheInvalidateOwner(t *testing.T) {
	ctx := context.Background()
	c := newTestImageCache()

	r := &images.Rendition{ContentType: "image/png", Data: []byte{1}}
	require.NoError(t, c.Set(ctx, "category-1", "category-1-a", r))
	require.NoError(t, c.Set(ctx, "category-1", "category-1-b", r))
	require.NoError(t, c.Set(ctx, "category-2", "category-2-a", r))

	require.NoError(t, c.InvalidateOwner(ctx, "category-1"))

	_, err := c.Get(ctx, "category-1-a")
	assert.Error(t, err)
	_, err = c.Get(ctx, "category-1-b")
	assert.Error(t, err)
	_, err = c.Get(ctx, "category-2-a")
	assert.NoError(t, err)
}

func TestImageCacheStats(t *testing.T) {
	ctx := context.Background()
	c := newTestImageCache()

	require.NoError(t, c.Set(ctx, "item-1", "k", &images.Rendition{}))
	_, _ = c.Get(ctx, "k")
	_, _ = c.Get(ctx, "missing")

	stats := c.GetStats()
	require.Len(t, stats, 1)
	assert.Equal(t, "image-renditions", stats[0].CacheName)
	assert.Equal(t, 1, stats[0].Hits)
	assert.Equal(t, 1, stats[0].Miss)
	assert.Equal(t, config.CacheTypeMemory, c.Type())
}

func TestPrefixedCacheType(t *testing.T) {
	c := NewPrefixedCache[string](newMemoryCache[any](), config.CacheTypeMemory, "p-")
	assert.Equal(t, config.CacheTypeMemory, c.GetType())
	assert.Equal(t, "p-key", c.key("key"))
}
