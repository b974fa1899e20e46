package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scout/config"
	"github.com/use-agent/scout/models"
	"golang.org/x/time/rate"
)

// staleAfter is how long an idle client's bucket survives before the
// cleanup sweep drops it.
const staleAfter = 10 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a per-client token bucket across all protected
// routes. Buckets are created on first sight and swept when idle.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	rps     rate.Limit
	burst   int
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*clientBucket),
		rps:     rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.Burst,
	}
}

// Allow reports whether the identified client may proceed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[key]
	if !ok {
		if len(rl.clients) >= 4096 {
			rl.sweepLocked()
		}
		b = &clientBucket{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[key] = b
	}
	b.lastSeen = time.Now()
	return b.limiter.Allow()
}

func (rl *RateLimiter) sweepLocked() {
	cut := time.Now().Add(-staleAfter)
	for key, b := range rl.clients {
		if b.lastSeen.Before(cut) {
			delete(rl.clients, key)
		}
	}
}

// Middleware is the gin adapter for the limiter.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(ClientKey(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": models.ErrorDetail{
					Code:    models.ErrCodeRateLimited,
					Message: "too many requests",
				},
			})
			return
		}
		c.Next()
	}
}
