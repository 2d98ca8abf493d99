package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeRedis  CacheType = "redis"
)

// DefaultDatabaseURI is used when neither database.uri nor a key vault is configured.
const DefaultDatabaseURI = "sqlite:///./data/bytesapi.db"

// Config holds the configuration for the bytesapi server and its dependencies.
type Config struct {
	// Listen is the address the HTTP server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// LogLevel is the default log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// LegacyEmptyList makes list endpoints answer an empty result with 400 and null data
	// instead of 200 and an empty list.
	LegacyEmptyList bool `yaml:"legacy_empty_list" mapstructure:"legacy_empty_list"`
	// Database holds the database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Vault holds the Azure Key Vault configuration used to look up the database URI.
	Vault *VaultConfig `yaml:"vault" mapstructure:"vault"`
	// Auth holds the authentication configuration.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`
	// APIKeys holds the API key lifecycle configuration.
	APIKeys *APIKeysConfig `yaml:"api_keys" mapstructure:"api_keys"`
	// Cache holds the cache engine configuration.
	Cache *CacheConfig `yaml:"cache" mapstructure:"cache"`
	// Images holds the image rendition configuration.
	Images *ImagesConfig `yaml:"images" mapstructure:"images"`
	// Gravatar holds the configuration for Gravatar profile pictures.
	Gravatar *GravatarConfig `yaml:"gravatar" mapstructure:"gravatar"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// URI is either a postgres:// DSN, a sqlite:/// URI or a path to a SQLite file.
	// When empty the URI is read from the key vault, or DefaultDatabaseURI is used.
	URI string `yaml:"uri" mapstructure:"uri"`
}

// VaultConfig holds the Azure Key Vault configuration.
type VaultConfig struct {
	// URI is the vault URL, e.g. https://my-vault.vault.azure.net.
	URI string `yaml:"uri" mapstructure:"uri"`
	// SecretName is the name of the secret holding the database URI.
	SecretName string `yaml:"secret_name" mapstructure:"secret_name"`
}

// AuthConfig holds the authentication configuration.
type AuthConfig struct {
	// RequireAPIKey guards all mutating routes with the X-API-Key header.
	RequireAPIKey bool `yaml:"require_api_key" mapstructure:"require_api_key"`
	// SessionKey is the key used to sign session cookies.
	SessionKey string `yaml:"session_key" mapstructure:"session_key"`
	// SessionMaxAge is the maximum age of a session in seconds.
	SessionMaxAge int `yaml:"session_max_age" mapstructure:"session_max_age"`
	// LoginRate is the number of login attempts per second allowed per client.
	LoginRate float64 `yaml:"login_rate" mapstructure:"login_rate"`
	// LoginBurst is the number of login attempts a client may make at once.
	LoginBurst int `yaml:"login_burst" mapstructure:"login_burst"`
	// TrustedProxies lists the proxy addresses or CIDRs whose forwarding headers
	// are believed when resolving the client IP. Empty means none.
	TrustedProxies []string `yaml:"trusted_proxies" mapstructure:"trusted_proxies"`
}

// APIKeysConfig holds the API key lifecycle configuration.
type APIKeysConfig struct {
	// TTL is how long a key stays valid after it was issued. Zero disables expiry.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
	// ExpirySchedule is the cron schedule of the expiry sweep.
	ExpirySchedule string `yaml:"expiry_schedule" mapstructure:"expiry_schedule"`
}

// CacheConfig holds the configuration for the cache engine.
type CacheConfig struct {
	// Type is the type of cache engine to use (e.g., "memory", "redis").
	Type CacheType `yaml:"type" mapstructure:"type"`
	// RedisURL is the address of the Redis server if using Redis.
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`
	// TTL is how long a cached rendition is kept.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ImagesConfig bounds the size of image renditions.
type ImagesConfig struct {
	MaxWidth  int `yaml:"max_width" mapstructure:"max_width"`
	MaxHeight int `yaml:"max_height" mapstructure:"max_height"`
}

// GravatarConfig holds the configuration for Gravatar profile pictures.
type GravatarConfig struct {
	// Enabled indicates whether Gravatar support is enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// DefaultImage is the default image to use when no Gravatar is found.
	// Valid values: "404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"
	DefaultImage string `yaml:"default_image" mapstructure:"default_image"`
	// Rating is the maximum rating for Gravatar images.
	// Valid values: "g", "pg", "r", "x"
	Rating string `yaml:"rating" mapstructure:"rating"`
	// Size is the size of the Gravatar image in pixels (1-2048).
	Size int `yaml:"size" mapstructure:"size"`
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
// Values from a .env file in the working directory are exported before the environment is read.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("failed to load .env file", "error", err)
	}

	v := viper.New()

	bindNestedEnv(v)
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("BYTESAPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.bytesapi")
		v.AddConfigPath("/etc/bytesapi")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Debug("No config file found, using defaults and environment")
	} else {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	sanitizeConfig(&c)

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:5000")
	v.SetDefault("log_level", "info")
	v.SetDefault("legacy_empty_list", false)

	v.SetDefault("vault.secret_name", "api-db-uri")

	v.SetDefault("auth.require_api_key", false)
	v.SetDefault("auth.session_key", "")
	v.SetDefault("auth.session_max_age", 3600)
	v.SetDefault("auth.login_rate", 1.0)
	v.SetDefault("auth.login_burst", 5)
	v.SetDefault("auth.trusted_proxies", []string{})

	v.SetDefault("api_keys.ttl", "720h")
	v.SetDefault("api_keys.expiry_schedule", "0 * * * *") // hourly

	v.SetDefault("cache.type", CacheTypeMemory)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "1h")

	v.SetDefault("images.max_width", 2048)
	v.SetDefault("images.max_height", 2048)

	v.SetDefault("gravatar.enabled", false)
	v.SetDefault("gravatar.default_image", "identicon")
	v.SetDefault("gravatar.rating", "g")
	v.SetDefault("gravatar.size", 80)
}

// Keys without a default are not picked up by AutomaticEnv during Unmarshal,
// so they are bound explicitly.
func bindNestedEnv(v *viper.Viper) {
	v.MustBindEnv("database.uri", "BYTESAPI_DATABASE_URI")
	v.MustBindEnv("vault.uri", "BYTESAPI_VAULT_URI", "KEYVAULT_URI", "keyvault_uri")
}

// validateConfig validates the configuration.
func validateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("missing bytesapi config")
	}

	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}

	if c.Auth == nil {
		return fmt.Errorf("missing auth config")
	}
	if c.Auth.SessionMaxAge <= 0 {
		return fmt.Errorf("session max age must be greater than 0")
	}
	if c.Auth.LoginRate <= 0 {
		return fmt.Errorf("login rate must be greater than 0")
	}
	if c.Auth.LoginBurst <= 0 {
		return fmt.Errorf("login burst must be greater than 0")
	}

	if c.APIKeys == nil {
		return fmt.Errorf("missing api_keys config")
	}
	if c.APIKeys.TTL < 0 {
		return fmt.Errorf("api key ttl must not be negative")
	}
	if len(strings.Fields(c.APIKeys.ExpirySchedule)) != 5 {
		return fmt.Errorf("api key expiry schedule must be a valid cron expression with 5 fields (minute hour day month weekday)")
	}

	if c.Cache != nil {
		if c.Cache.Type == "" {
			return fmt.Errorf("cache type is required when cache is enabled")
		}
		if c.Cache.Type != CacheTypeMemory && c.Cache.Type != CacheTypeRedis {
			return fmt.Errorf("unknown cache type %q", c.Cache.Type)
		}
		if c.Cache.Type == CacheTypeRedis && c.Cache.RedisURL == "" {
			return fmt.Errorf("Redis URL is required when Redis cache is enabled") //nolint:staticcheck
		}
	} else {
		c.Cache = &CacheConfig{
			Type: CacheTypeMemory,
			TTL:  time.Hour,
		}
	}

	if c.Images == nil || c.Images.MaxWidth <= 0 || c.Images.MaxHeight <= 0 {
		return fmt.Errorf("image max width and max height must be greater than 0")
	}

	if c.Gravatar != nil && c.Gravatar.Enabled {
		if c.Gravatar.Size < 1 || c.Gravatar.Size > 2048 {
			return fmt.Errorf("gravatar size must be between 1 and 2048")
		}
	}

	return nil
}

// sanitizeConfig sanitizes the configuration values.
func sanitizeConfig(c *Config) {
	if c == nil {
		return
	}

	c.Listen = strings.TrimSpace(c.Listen)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	if c.Database == nil {
		c.Database = &DatabaseConfig{}
	}
	c.Database.URI = strings.TrimSpace(c.Database.URI)

	if c.Vault == nil {
		c.Vault = &VaultConfig{SecretName: "api-db-uri"}
	}
	c.Vault.URI = urlSanitize(c.Vault.URI)

	if c.Auth != nil && c.Auth.SessionKey == "" {
		c.Auth.SessionKey = randomKey()
		log.Warn("no session key configured, generated a random one; sessions will not survive restarts")
	}
}

func urlSanitize(url string) string {
	return strings.TrimSuffix(strings.TrimSpace(url), "/")
}

func randomKey() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("failed to generate session key: %v", err)
	}
	return hex.EncodeToString(b)
}
