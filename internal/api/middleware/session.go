package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionHeader requires the X-Session-ID header and puts it in the gin
// context. Each practice session keeps its own idempotency table and index,
// so every clip operation must name one.
func SessionHeader() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("X-Session-ID")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Session required",
				"message": "Missing X-Session-ID header",
			})
			c.Abort()
			return
		}

		c.Set("session_id", sessionID)
		c.Next()
	}
}

// OptionalSessionHeader is like SessionHeader but doesn't fail if the
// header is missing. Useful for read-only endpoints.
func OptionalSessionHeader() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionID := c.GetHeader("X-Session-ID"); sessionID != "" {
			c.Set("session_id", sessionID)
		}
		c.Next()
	}
}

// GetSessionID retrieves the session ID from the gin context.
// Returns the ID and a boolean indicating if it was found.
func GetSessionID(c *gin.Context) (string, bool) {
	sessionID, exists := c.Get("session_id")
	if !exists {
		return "", false
	}
	id, ok := sessionID.(string)
	return id, ok && id != ""
}
