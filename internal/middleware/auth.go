package middleware

import (
	"crypto/subtle"
	"net/http"

	"quiz-portal/internal/dto"

	"github.com/gin-gonic/gin"
)

const AdminKeyHeader = "X-Admin-Key"

// RequireLogin rejects anonymous sessions and exposes the user id as
// "user_id" on the context.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		state := State(c)
		if state == nil || !state.IsAuthenticated() {
			dto.JsonError(c, http.StatusUnauthorized, "Please log in to continue.")
			c.Abort()
			return
		}

		c.Set("user_id", state.UserID)
		c.Set("username", state.Username)

		c.Next()
	}
}

// AdminKey guards content management routes. An empty key disables them.
func AdminKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			dto.JsonError(c, http.StatusForbidden, "Admin API is disabled")
			c.Abort()
			return
		}

		supplied := c.GetHeader(AdminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(key)) != 1 {
			dto.JsonError(c, http.StatusUnauthorized, "Invalid admin key")
			c.Abort()
			return
		}

		c.Next()
	}
}
