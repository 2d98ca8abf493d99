// Package vault resolves secrets, most importantly the database URI, from Azure Key Vault.
package vault

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/btecbytes/bytesapi/internal/config"
	"github.com/charmbracelet/log"
)

// SecretGetter fetches a secret value by name.
type SecretGetter interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Client reads secrets from an Azure Key Vault.
type Client struct {
	secrets *azsecrets.Client
}

var _ SecretGetter = (*Client)(nil)

// New creates a Key Vault client authenticated with the default Azure credential chain
// (environment, workload identity, managed identity, Azure CLI).
func New(vaultURL string) (*Client, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure credential: %w", err)
	}
	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create key vault client: %w", err)
	}
	return &Client{secrets: client}, nil
}

// GetSecret returns the latest version of the named secret.
func (c *Client) GetSecret(ctx context.Context, name string) (string, error) {
	resp, err := c.secrets.GetSecret(ctx, name, "", nil)
	if err != nil {
		return "", fmt.Errorf("failed to get secret %s: %w", name, err)
	}
	if resp.Value == nil || *resp.Value == "" {
		return "", fmt.Errorf("secret %s is empty", name)
	}
	return *resp.Value, nil
}

// DatabaseURI picks the database URI in this order: database.uri, the vault secret, config.DefaultDatabaseURI.
// newGetter is only called when the vault has to be consulted.
func DatabaseURI(ctx context.Context, cfg *config.Config, newGetter func(vaultURL string) (SecretGetter, error)) (string, error) {
	if cfg.Database != nil && cfg.Database.URI != "" {
		return cfg.Database.URI, nil
	}
	if cfg.Vault == nil || cfg.Vault.URI == "" {
		return config.DefaultDatabaseURI, nil
	}

	getter, err := newGetter(cfg.Vault.URI)
	if err != nil {
		return "", err
	}
	log.Info("reading database uri from key vault", "vault", cfg.Vault.URI, "secret", cfg.Vault.SecretName)
	uri, err := getter.GetSecret(ctx, cfg.Vault.SecretName)
	if err != nil {
		return "", err
	}
	return uri, nil
}

// NewGetter adapts New to the constructor signature DatabaseURI expects.
func NewGetter(vaultURL string) (SecretGetter, error) {
	return New(vaultURL)
}
