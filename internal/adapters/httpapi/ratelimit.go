package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sorsu/tiktalk/internal/adapters/ws"
)

// RateLimit rejects over-limit requests with 429 before the handler
// runs.
func RateLimit(rl *ws.IPRateLimiter, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(ws.ClientIP(c.Request)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": message})
			return
		}
		c.Next()
	}
}
