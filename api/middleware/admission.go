package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scout/config"
	"github.com/use-agent/scout/models"
)

type admissionWindow struct {
	times        []time.Time
	blockedUntil time.Time
}

// Admission gates the search endpoints with a per-client sliding window.
// Searches are far more expensive than other routes (each one drives a
// real browser), so exceeding the window triggers a hard cooldown on top
// of the regular token bucket.
type Admission struct {
	mu        sync.Mutex
	clients   map[string]*admissionWindow
	perMinute int
	cooldown  time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

func NewAdmission(cfg config.AdmissionConfig) *Admission {
	return &Admission{
		clients:   make(map[string]*admissionWindow),
		perMinute: cfg.PerMinute,
		cooldown:  cfg.Cooldown,
		now:       time.Now,
	}
}

// Allow admits one search for the client, or reports how long the client
// must wait. A client in cooldown is refused without touching its window.
func (a *Admission) Allow(key string) (time.Duration, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	w, ok := a.clients[key]
	if !ok {
		w = &admissionWindow{}
		a.clients[key] = w
	}

	if now.Before(w.blockedUntil) {
		return w.blockedUntil.Sub(now), false
	}

	cut := now.Add(-time.Minute)
	kept := w.times[:0]
	for _, t := range w.times {
		if t.After(cut) {
			kept = append(kept, t)
		}
	}
	w.times = kept

	if len(w.times) >= a.perMinute {
		w.blockedUntil = now.Add(a.cooldown)
		return a.cooldown, false
	}

	w.times = append(w.times, now)
	return 0, true
}

// Middleware is the gin adapter: refusals answer 429 with a Retry-After.
func (a *Admission) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		retryAfter, ok := a.Allow(ClientKey(c))
		if !ok {
			c.Header("Retry-After", fmt.Sprintf("%.0f", retryAfter.Seconds()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": models.ErrorDetail{
					Code:    models.ErrCodeRateLimited,
					Message: "search budget exhausted, retry later",
				},
			})
			return
		}
		c.Next()
	}
}
