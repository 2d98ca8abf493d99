// Package gravatar derives avatar URLs for user emails.
package gravatar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/btecbytes/bytesapi/internal/config"
	"github.com/samber/lo"
)

const baseURL = "https://www.gravatar.com/avatar/"

var (
	defaultImages = []string{"404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"}
	ratings       = []string{"g", "pg", "r", "x"}
)

// Resolver builds avatar URLs. A nil or disabled resolver yields empty URLs.
type Resolver struct {
	enabled bool
	query   string
}

// New checks cfg and prepares the shared query string.
func New(cfg *config.GravatarConfig) (*Resolver, error) {
	if cfg == nil || !cfg.Enabled {
		return &Resolver{}, nil
	}
	if cfg.DefaultImage != "" && !lo.Contains(defaultImages, cfg.DefaultImage) {
		return nil, fmt.Errorf("invalid gravatar default image %q", cfg.DefaultImage)
	}
	if cfg.Rating != "" && !lo.Contains(ratings, cfg.Rating) {
		return nil, fmt.Errorf("invalid gravatar rating %q", cfg.Rating)
	}
	if cfg.Size != 0 && (cfg.Size < 1 || cfg.Size > 2048) {
		return nil, fmt.Errorf("invalid gravatar size %d", cfg.Size)
	}

	params := url.Values{}
	if cfg.DefaultImage != "" {
		params.Add("d", cfg.DefaultImage)
	}
	if cfg.Rating != "" {
		params.Add("r", cfg.Rating)
	}
	if cfg.Size > 0 {
		params.Add("s", strconv.Itoa(cfg.Size))
	}
	return &Resolver{enabled: true, query: params.Encode()}, nil
}

// URL returns the avatar URL of email, or "" when disabled or email is empty.
func (r *Resolver) URL(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if r == nil || !r.enabled || email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(email))
	u := baseURL + hex.EncodeToString(hash[:])
	if r.query != "" {
		u += "?" + r.query
	}
	return u
}
