package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CapConcurrentRequests rejects requests with 429 once maxConcurrent are
// already in flight, protecting the hub's snapshot recomputation and the
// WebSocket upgrade path from pile-ups under load.
func CapConcurrentRequests(maxConcurrent int) gin.HandlerFunc {
	semaphore := make(chan struct{}, maxConcurrent)

	return func(c *gin.Context) {
		select {
		case semaphore <- struct{}{}:
			defer func() { <-semaphore }()
			c.Next()
		default:
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many concurrent requests",
			})
		}
	}
}
