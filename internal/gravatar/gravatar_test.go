package gravatar

import (
	"testing"

	"github.com/btecbytes/bytesapi/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHash = "973dfe463ec85785f5f95af5ba3906eedb2d931c24e69824a89ea65dba4e813b"

func TestResolverURL(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		config   *config.GravatarConfig
		expected string
	}{
		{
			name:     "disabled",
			email:    "test@example.com",
			config:   &config.GravatarConfig{Enabled: false, Size: 99999},
			expected: "",
		},
		{
			name:     "nil config",
			email:    "test@example.com",
			config:   nil,
			expected: "",
		},
		{
			name:     "empty email",
			email:    "  ",
			config:   &config.GravatarConfig{Enabled: true},
			expected: "",
		},
		{
			name:     "no options",
			email:    "test@example.com",
			config:   &config.GravatarConfig{Enabled: true},
			expected: "https://www.gravatar.com/avatar/" + testHash,
		},
		{
			name:  "all options and normalised email",
			email: " TEST@Example.com ",
			config: &config.GravatarConfig{
				Enabled:      true,
				DefaultImage: "identicon",
				Rating:       "pg",
				Size:         120,
			},
			expected: "https://www.gravatar.com/avatar/" + testHash + "?d=identicon&r=pg&s=120",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, r.URL(tt.email))
		})
	}
}

func TestNilResolver(t *testing.T) {
	var r *Resolver
	assert.Equal(t, "", r.URL("test@example.com"))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config *config.GravatarConfig
	}{
		{name: "default image", config: &config.GravatarConfig{Enabled: true, DefaultImage: "MP"}},
		{name: "rating", config: &config.GravatarConfig{Enabled: true, Rating: "nc17"}},
		{name: "size", config: &config.GravatarConfig{Enabled: true, Size: 2049}},
		{name: "negative size", config: &config.GravatarConfig{Enabled: true, Size: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			assert.Error(t, err)
		})
	}
}
