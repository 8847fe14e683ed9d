package middleware

import (
	"net/http"

	"boxcric/utils"

	"github.com/gin-gonic/gin"
)

// RequireRole must run after JWTAuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{Message: "Insufficient permissions"})
			return
		}
		c.Next()
	}
}
