package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/btecbytes/bytesapi/internal/api/models"
	"github.com/btecbytes/bytesapi/internal/database"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// APIKeyHeader carries the API key of a request.
const APIKeyHeader = "X-API-Key"

// APIKeyStore looks up issued API keys.
type APIKeyStore interface {
	GetAPIKey(ctx context.Context, key string) (*database.APIKey, error)
}

// RequireAPIKey returns a middleware that rejects requests without a valid, unexpired API key.
func RequireAPIKey(store APIKeyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(APIKeyHeader)
		if key == "" {
			unauthorized(c, "Missing API key.")
			return
		}

		apiKey, err := store.GetAPIKey(c.Request.Context(), key)
		if err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				log.Error("Failed to look up API key", "error", err)
			}
			unauthorized(c, "Invalid API key.")
			return
		}
		if apiKey.Expired {
			unauthorized(c, "API key expired.")
			return
		}

		c.Set("api_key_id", apiKey.ID)
		c.Next()
	}
}

// RequireAPIKeyForWrites applies RequireAPIKey to POST, PATCH, PUT and DELETE requests only.
func RequireAPIKeyForWrites(store APIKeyStore) gin.HandlerFunc {
	requireKey := RequireAPIKey(store)
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
			requireKey(c)
		default:
			c.Next()
		}
	}
}

func unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, models.Envelope{
		Response: http.StatusUnauthorized,
		Message:  message,
	})
	c.Abort()
}
