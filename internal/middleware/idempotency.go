package middleware

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	internalredis "github.com/pijushrbiswas/Ride-Hailing-Application/internal/redis"
)

const idempotencyHeader = "Idempotency-Key"

// responseWriter wraps gin.ResponseWriter to capture the response body.
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the captured first response for repeated keys within
// the store's TTL. The scope keeps keys from colliding across endpoint
// categories. Only 2xx responses are captured; a failed attempt may be
// retried with the same key.
func Idempotency(store internalredis.IdempotencyStoreInterface, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()

		cached, err := store.Get(ctx, scope, key)
		if err == nil && cached != nil {
			c.Data(cached.StatusCode, "application/json", cached.Body)
			c.Abort()
			return
		}

		w := &responseWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			_ = store.Set(ctx, scope, key, &internalredis.CachedResponse{
				StatusCode: status,
				Body:       w.body.Bytes(),
			})
		}
	}
}
