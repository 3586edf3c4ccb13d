// Package middleware collects the gin.HandlerFunc building blocks shared
// across the HTTP and WebSocket upgrade routes, ported from
// edirooss-zmux-server/internal/http/middleware.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// RequestID ensures every request carries an X-Request-ID, generating one
// when the client didn't supply a usable value.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if l := len(id); l < 1 || l > 64 {
			id = uuid.New().String()
		}
		c.Header("X-Request-ID", id)
		c.Set(requestIDKey, id)
		c.Next()
	}
}

// GetRequestID retrieves the request ID stashed by RequestID, or "" if
// absent.
func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
