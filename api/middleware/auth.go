// Package middleware holds the gin middleware shared by the API routes:
// token auth, the per-client token bucket and the search admission gate.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scout/config"
	"github.com/use-agent/scout/models"
)

// ContextKeyAPIKey is the gin context key the authenticated API key is
// stored under, used by the rate limiters to identify the client.
const ContextKeyAPIKey = "api_key"

// Auth validates the request token against the configured key list.
// With auth disabled, or enabled but no keys configured, every request
// passes; the router logs a warning for the latter at startup.
func Auth(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || len(cfg.APIKeys) == 0 {
			c.Next()
			return
		}

		token := extractToken(c)
		if token != "" {
			for _, key := range cfg.APIKeys {
				if subtle.ConstantTimeCompare([]byte(token), []byte(key)) == 1 {
					c.Set(ContextKeyAPIKey, key)
					c.Next()
					return
				}
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": models.ErrorDetail{
				Code:    models.ErrCodeUnauthorized,
				Message: "missing or invalid API key",
			},
		})
	}
}

func extractToken(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	auth := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return after
	}
	return ""
}

// ClientKey identifies the caller for rate limiting: the API key when
// authenticated, the client IP otherwise.
func ClientKey(c *gin.Context) string {
	if key, ok := c.Get(ContextKeyAPIKey); ok {
		if s, ok := key.(string); ok && s != "" {
			return s
		}
	}
	return c.ClientIP()
}
