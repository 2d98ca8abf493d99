package database

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// APIKey is a credential accepted in the X-API-Key header.
type APIKey struct {
	Base
	Key       string    `gorm:"uniqueIndex;not null"`
	Expired   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (APIKey) TableName() string { return "api_key" }

// NewAPIKey returns a key with a fresh random UUID.
func NewAPIKey() *APIKey {
	return &APIKey{Key: uuid.NewString()}
}

func (c *Client) CreateAPIKey(ctx context.Context) (*APIKey, error) {
	key := NewAPIKey()
	if err := c.db.WithContext(ctx).Create(key).Error; err != nil {
		log.Error("failed to create api key", "error", err)
		return nil, translateError(err)
	}
	return key, nil
}

func (c *Client) GetAPIKeys(ctx context.Context) ([]APIKey, error) {
	var keys []APIKey
	if err := c.db.WithContext(ctx).Order("id").Find(&keys).Error; err != nil {
		log.Error("failed to get api keys", "error", err)
		return nil, err
	}
	return keys, nil
}

func (c *Client) GetAPIKey(ctx context.Context, key string) (*APIKey, error) {
	var apiKey APIKey
	if err := c.db.WithContext(ctx).Where("key = ?", key).First(&apiKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "APIKey", Key: key}
		}
		log.Error("failed to get api key", "error", err)
		return nil, err
	}
	return &apiKey, nil
}

func (c *Client) ExpireAPIKey(ctx context.Context, key string) error {
	result := c.db.WithContext(ctx).Model(&APIKey{}).Where("key = ?", key).Update("expired", true)
	if result.Error != nil {
		log.Error("failed to expire api key", "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Entity: "APIKey", Key: key}
	}
	return nil
}

// ExpireAPIKeysCreatedBefore marks every active key created before cutoff as expired
// and returns how many keys changed.
func (c *Client) ExpireAPIKeysCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := c.db.WithContext(ctx).Model(&APIKey{}).
		Where("expired = ? AND created_at < ?", false, cutoff).
		Update("expired", true)
	if result.Error != nil {
		log.Error("failed to expire api keys", "error", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
