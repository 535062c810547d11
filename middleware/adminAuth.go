package middleware

import (
	"net/http"

	"cosecha/services/capability"

	"github.com/gin-gonic/gin"
)

// AdminOnlyMiddleware gates a route on the admin capability. It runs after
// JWTAuthMiddleware and consults the same capability resolver as the
// approval and notification paths.
func AdminOnlyMiddleware(resolver capability.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := CallerID(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		isAdmin, err := resolver.HasAdminCapability(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Capability check failed"})
			return
		}
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin capability required"})
			return
		}

		c.Set("isAdmin", true)
		c.Next()
	}
}
