package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/pulsedesk/backend/pkg/response"
)

// RequireRole allows the request through only when the authenticated user's
// role is in the given set. Must run after JWT.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		if role == "" {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "insufficient permissions")
		c.Abort()
	}
}
