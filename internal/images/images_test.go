package images

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*Rendition
	owners  map[string][]string
	gets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]*Rendition{}, owners: map[string][]string{}}
}

func (m *memoryCache) Get(_ context.Context, key string) (*Rendition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	r, ok := m.entries[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return r, nil
}

func (m *memoryCache) Set(_ context.Context, owner, key string, r *Rendition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = r
	m.owners[owner] = append(m.owners[owner], key)
	return nil
}

func (m *memoryCache) InvalidateOwner(_ context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range m.owners[owner] {
		delete(m.entries, key)
	}
	delete(m.owners, owner)
	return nil
}

func pngPayload(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    imaging.Format
		wantErr bool
	}{
		{name: "png", input: "png", want: imaging.PNG},
		{name: "jpg", input: "jpg", want: imaging.JPEG},
		{name: "upper jpeg", input: "JPEG", want: imaging.JPEG},
		{name: "gif", input: " gif ", want: imaging.GIF},
		{name: "webp", input: "webp", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, strings.HasPrefix(ContentType(got), "image/"))
		})
	}
}

func TestScaledDimensions(t *testing.T) {
	tests := []struct {
		name                  string
		width, height         int
		maxWidth, maxHeight   int
		wantWidth, wantHeight int
	}{
		{name: "fits", width: 100, height: 50, maxWidth: 200, maxHeight: 200, wantWidth: 100, wantHeight: 50},
		{name: "too wide", width: 400, height: 100, maxWidth: 200, maxHeight: 200, wantWidth: 200, wantHeight: 50},
		{name: "too tall", width: 100, height: 400, maxWidth: 200, maxHeight: 200, wantWidth: 50, wantHeight: 200},
		{name: "both", width: 1000, height: 500, maxWidth: 100, maxHeight: 100, wantWidth: 100, wantHeight: 50},
		{name: "never zero", width: 1000, height: 1, maxWidth: 10, maxHeight: 10, wantWidth: 10, wantHeight: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := scaledDimensions(tt.width, tt.height, tt.maxWidth, tt.maxHeight)
			assert.Equal(t, tt.wantWidth, w)
			assert.Equal(t, tt.wantHeight, h)
		})
	}
}

func TestRenderResizesAndCaches(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	r := NewRenderer(cache, 1000, 1000)
	payload := pngPayload(t, 40, 20)

	rendition, err := r.Render(ctx, ItemOwner(1), payload, "png", 10, 10)
	require.NoError(t, err)
	assert.Equal(t, "image/png", rendition.ContentType)
	assert.Equal(t, 10, rendition.Width)
	assert.Equal(t, 5, rendition.Height)

	decoded, err := png.Decode(bytes.NewReader(rendition.Data))
	require.NoError(t, err)
	assert.Equal(t, 10, decoded.Bounds().Dx())

	again, err := r.Render(ctx, ItemOwner(1), []byte("ignored once cached"), "png", 10, 10)
	require.NoError(t, err)
	assert.Equal(t, rendition, again)

	r.Invalidate(ctx, ItemOwner(1))
	_, err = r.Render(ctx, ItemOwner(1), []byte("not an image"), "png", 10, 10)
	assert.True(t, errors.Is(err, ErrUndecodable))
}

func TestRenderRespectsRendererBounds(t *testing.T) {
	r := NewRenderer(newMemoryCache(), 8, 8)

	rendition, err := r.Render(context.Background(), CategoryOwner(3), pngPayload(t, 32, 16), "png", 0, 0)
	require.NoError(t, err)
	assert.LessOrEqual(t, rendition.Width, 8)
	assert.LessOrEqual(t, rendition.Height, 8)
}

func TestRenderConvertsFormat(t *testing.T) {
	r := NewRenderer(newMemoryCache(), 100, 100)

	rendition, err := r.Render(context.Background(), ItemOwner(9), pngPayload(t, 4, 4), "jpeg", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", rendition.ContentType)
	assert.Equal(t, 4, rendition.Width)
}

func TestRenderUnsupportedFormat(t *testing.T) {
	r := NewRenderer(newMemoryCache(), 100, 100)
	_, err := r.Render(context.Background(), ItemOwner(1), pngPayload(t, 2, 2), "svg", 0, 0)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestOwners(t *testing.T) {
	assert.Equal(t, "category-4", CategoryOwner(4))
	assert.Equal(t, "item-7", ItemOwner(7))
}
