package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vnkhanh/devlearn-backend/models"
)

// RequireRoles cho phép chỉ định nhiều vai trò được quyền truy cập.
// Phải đặt sau AuthMiddleware.
func RequireRoles(allowedRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if role == "" {
			abortWithMessage(c, http.StatusUnauthorized, "Not authorized")
			return
		}

		for _, allowed := range allowedRoles {
			if role == string(allowed) {
				c.Next()
				return
			}
		}

		abortWithMessage(c, http.StatusForbidden, "Not authorized as an admin")
	}
}

// RequireAdmin = AuthMiddleware + RequireRoles(admin)
func RequireAdmin() []gin.HandlerFunc {
	return []gin.HandlerFunc{AuthMiddleware(), RequireRoles(models.RoleAdmin)}
}
