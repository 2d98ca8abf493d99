// Package images validates stored image payloads and renders resized renditions of them.
package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
)

var (
	// ErrUnsupportedFormat is returned for image formats that cannot be encoded.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrUndecodable is returned when a stored payload is not a readable image.
	ErrUndecodable = errors.New("image payload cannot be decoded")
)

const jpegQuality = 85

// Rendition is an encoded image ready to be served.
type Rendition struct {
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// Cache stores renditions. Entries are grouped by owner so they can be dropped together.
type Cache interface {
	Get(ctx context.Context, key string) (*Rendition, error)
	Set(ctx context.Context, owner, key string, rendition *Rendition) error
	InvalidateOwner(ctx context.Context, owner string) error
}

// ParseFormat validates a format name such as "png", "jpg" or "JPEG".
func ParseFormat(name string) (imaging.Format, error) {
	format, err := imaging.FormatFromExtension(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	return format, nil
}

// ContentType returns the MIME type of a format.
func ContentType(format imaging.Format) string {
	switch format {
	case imaging.JPEG:
		return "image/jpeg"
	case imaging.PNG:
		return "image/png"
	case imaging.GIF:
		return "image/gif"
	case imaging.TIFF:
		return "image/tiff"
	case imaging.BMP:
		return "image/bmp"
	default:
		return "application/octet-stream"
	}
}

// CategoryOwner is the cache owner key of a category image.
func CategoryOwner(id uint) string { return fmt.Sprintf("category-%d", id) }

// ItemOwner is the cache owner key of an item image.
func ItemOwner(id uint) string { return fmt.Sprintf("item-%d", id) }

// Renderer produces bounded renditions and keeps them in a Cache.
type Renderer struct {
	cache     Cache
	maxWidth  int // Upper bound for any rendition
	maxHeight int // Upper bound for any rendition
}

// NewRenderer creates a renderer that never produces images larger than maxWidth x maxHeight.
func NewRenderer(cache Cache, maxWidth, maxHeight int) *Renderer {
	return &Renderer{
		cache:     cache,
		maxWidth:  maxWidth,
		maxHeight: maxHeight,
	}
}

// Render returns the payload of owner scaled to fit width x height.
// A zero width or height leaves that dimension bounded only by the renderer limits.
// Images that already fit are re-encoded unchanged.
func (r *Renderer) Render(ctx context.Context, owner string, payload []byte, formatName string, width, height int) (*Rendition, error) {
	format, err := ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	boundW, boundH := r.bounds(width, height)
	key := fmt.Sprintf("%s-%dx%d", owner, boundW, boundH)

	if cached, err := r.cache.Get(ctx, key); err == nil && cached != nil {
		log.Debug("serving cached rendition", "key", key)
		return cached, nil
	}

	img, err := imaging.Decode(bytes.NewReader(payload), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUndecodable, err)
	}

	originalWidth, originalHeight := img.Bounds().Dx(), img.Bounds().Dy()
	newWidth, newHeight := scaledDimensions(originalWidth, originalHeight, boundW, boundH)

	var processed image.Image = img
	if newWidth != originalWidth || newHeight != originalHeight {
		processed = imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
		log.Debugf("Resized image %s from %dx%d to %dx%d", owner, originalWidth, originalHeight, newWidth, newHeight)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, processed, format, imaging.JPEGQuality(jpegQuality), imaging.PNGCompressionLevel(6)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	rendition := &Rendition{
		ContentType: ContentType(format),
		Data:        buf.Bytes(),
		Width:       processed.Bounds().Dx(),
		Height:      processed.Bounds().Dy(),
	}
	log.Debug("rendered image", "owner", owner, "size", humanize.Bytes(uint64(len(rendition.Data))))

	if err := r.cache.Set(ctx, owner, key, rendition); err != nil {
		log.Warn("failed to cache rendition", "key", key, "error", err)
	}
	return rendition, nil
}

// Invalidate drops every cached rendition of owner.
func (r *Renderer) Invalidate(ctx context.Context, owner string) {
	if err := r.cache.InvalidateOwner(ctx, owner); err != nil {
		log.Warn("failed to invalidate renditions", "owner", owner, "error", err)
	}
}

func (r *Renderer) bounds(width, height int) (int, int) {
	w, h := r.maxWidth, r.maxHeight
	if width > 0 && width < w {
		w = width
	}
	if height > 0 && height < h {
		h = height
	}
	return w, h
}

// scaledDimensions fits width x height into maxWidth x maxHeight keeping the aspect ratio.
func scaledDimensions(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}

	widthRatio := float64(maxWidth) / float64(width)
	heightRatio := float64(maxHeight) / float64(height)
	ratio := min(widthRatio, heightRatio)

	newWidth := max(int(float64(width)*ratio), 1)
	newHeight := max(int(float64(height)*ratio), 1)
	return newWidth, newHeight
}
