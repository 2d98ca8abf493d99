package scheduler

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// JobIDAPIKeyExpiry identifies the API key expiry sweep.
const JobIDAPIKeyExpiry = "api-key-expiry"

// APIKeyExpirer marks old API keys as expired.
type APIKeyExpirer interface {
	ExpireAPIKeysCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ExpireAPIKeysJob returns a job that expires keys older than ttl.
func ExpireAPIKeysJob(db APIKeyExpirer, ttl time.Duration, now func() time.Time) JobFunc {
	return func(ctx context.Context) error {
		expired, err := db.ExpireAPIKeysCreatedBefore(ctx, now().Add(-ttl))
		if err != nil {
			return err
		}
		if expired > 0 {
			log.Info("expired api keys", "count", expired, "ttl", ttl)
		}
		return nil
	}
}
