package vault

import (
	"context"
	"errors"
	"testing"

	"github.com/btecbytes/bytesapi/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGetter struct {
	secrets map[string]string
	err     error
	calls   int
}

func (f *fakeGetter) GetSecret(_ context.Context, name string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.secrets[name], nil
}

func TestDatabaseURI(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit uri wins", func(t *testing.T) {
		getter := &fakeGetter{}
		cfg := &config.Config{
			Database: &config.DatabaseConfig{URI: "postgres://db"},
			Vault:    &config.VaultConfig{URI: "https://v.vault.azure.net", SecretName: "api-db-uri"},
		}
		uri, err := DatabaseURI(ctx, cfg, func(string) (SecretGetter, error) { return getter, nil })
		require.NoError(t, err)
		assert.Equal(t, "postgres://db", uri)
		assert.Zero(t, getter.calls)
	})

	t.Run("vault secret", func(t *testing.T) {
		getter := &fakeGetter{secrets: map[string]string{"api-db-uri": "postgres://vault"}}
		cfg := &config.Config{
			Database: &config.DatabaseConfig{},
			Vault:    &config.VaultConfig{URI: "https://v.vault.azure.net", SecretName: "api-db-uri"},
		}
		var gotURL string
		uri, err := DatabaseURI(ctx, cfg, func(url string) (SecretGetter, error) {
			gotURL = url
			return getter, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "postgres://vault", uri)
		assert.Equal(t, "https://v.vault.azure.net", gotURL)
	})

	t.Run("default sqlite", func(t *testing.T) {
		cfg := &config.Config{Database: &config.DatabaseConfig{}, Vault: &config.VaultConfig{}}
		uri, err := DatabaseURI(ctx, cfg, nil)
		require.NoError(t, err)
		assert.Equal(t, config.DefaultDatabaseURI, uri)
	})

	t.Run("vault error", func(t *testing.T) {
		boom := errors.New("forbidden")
		cfg := &config.Config{Vault: &config.VaultConfig{URI: "https://v.vault.azure.net", SecretName: "api-db-uri"}}
		_, err := DatabaseURI(ctx, cfg, func(string) (SecretGetter, error) { return &fakeGetter{err: boom}, nil })
		assert.ErrorIs(t, err, boom)
	})
}
