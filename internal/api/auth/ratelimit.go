package auth

import (
	"net/http"
	"sync"
	"time"

	"github.com/btecbytes/bytesapi/internal/api/models"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an unused per-client limiter is kept.
const limiterIdleTTL = 10 * time.Minute

// LoginLimiter throttles login attempts per client IP with a token bucket.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters *gocache.Cache
	limit    rate.Limit
	burst    int
}

// NewLoginLimiter allows perSecond attempts with bursts of burst per client.
// A non-positive rate disables throttling.
func NewLoginLimiter(perSecond float64, burst int) *LoginLimiter {
	return &LoginLimiter{
		limiters: gocache.New(limiterIdleTTL, limiterIdleTTL),
		limit:    rate.Limit(perSecond),
		burst:    max(burst, 1),
	}
}

// Allow reports whether client may attempt a login now.
func (l *LoginLimiter) Allow(client string) bool {
	if l.limit <= 0 {
		return true
	}
	return l.limiter(client).Allow()
}

func (l *LoginLimiter) limiter(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cached, ok := l.limiters.Get(client); ok {
		limiter := cached.(*rate.Limiter)
		l.limiters.SetDefault(client, limiter) // refresh idle expiry
		return limiter
	}
	limiter := rate.NewLimiter(l.limit, l.burst)
	l.limiters.SetDefault(client, limiter)
	return limiter
}

// Middleware answers 429 once a client has used up its attempts.
func (l *LoginLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			log.Warn("Login rate limit exceeded", "client", c.ClientIP())
			c.JSON(http.StatusTooManyRequests, models.Envelope{
				Response: http.StatusTooManyRequests,
				Message:  "Too many login attempts, try again later.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
