package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"expenses_bot/internal/logger"
	"expenses_bot/internal/ratelimit"
)

// RateLimit rejects clients whose IP is over the limiter's budget. Limiter errors
// fail open and are reported in the X-RateLimit-Error header.
func RateLimit(l ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn("rate limiter unavailable", "error", err)
			c.Header("X-RateLimit-Error", "backend-error")
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
