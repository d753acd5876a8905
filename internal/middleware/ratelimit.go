package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	internalredis "github.com/pijushrbiswas/Ride-Hailing-Application/internal/redis"
)

// RateLimit enforces a fixed-window cap per client IP for one endpoint
// category. A Redis failure lets the request through; the limiter protects
// capacity, it is not an auth boundary.
func RateLimit(store internalredis.RateLimitStoreInterface, category string, limit int, window time.Duration) gin.HandlerFunc {
	return rateLimit(store, category, limit, window, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// RateLimitByParam enforces the cap per value of a path parameter, so the
// bucket follows the addressed resource rather than the caller's address.
// Falls back to the client IP when the parameter is absent.
func RateLimitByParam(store internalredis.RateLimitStoreInterface, category, param string, limit int, window time.Duration) gin.HandlerFunc {
	return rateLimit(store, category, limit, window, func(c *gin.Context) string {
		if v := c.Param(param); v != "" {
			return v
		}
		return c.ClientIP()
	})
}

func rateLimit(store internalredis.RateLimitStoreInterface, category string, limit int, window time.Duration, key func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket := category + ":" + key(c)

		allowed, err := store.Allow(c.Request.Context(), bucket, limit, window)
		if err != nil {
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
