package middleware

import (
	"boxcric/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthAdminMiddleware authenticates the caller and requires the admin role.
func JWTAuthAdminMiddleware(secret string) []gin.HandlerFunc {
	return []gin.HandlerFunc{JWTAuthMiddleware(secret), RequireRole(utils.RoleAdmin)}
}
