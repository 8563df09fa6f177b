package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vnkhanh/devlearn-backend/config"
	"github.com/vnkhanh/devlearn-backend/models"
	"github.com/vnkhanh/devlearn-backend/utils"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

func abortWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

// bearerToken lấy token từ "Authorization: Bearer <token>", fallback X-Auth-Token
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		authHeader = c.GetHeader("X-Auth-Token")
	}
	if authHeader == "" {
		return "", false
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			abortWithMessage(c, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		claims, err := utils.VerifyToken(tokenString)
		if err != nil {
			abortWithMessage(c, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		// Kiểm tra user còn tồn tại và chưa bị khóa
		var user models.User
		if err := config.DB.WithContext(c.Request.Context()).
			Select("id", "role", "status").
			First(&user, "id = ?", claims.UserID).Error; err != nil {
			abortWithMessage(c, http.StatusUnauthorized, "Not authorized, user not found")
			return
		}
		if !user.IsActive() {
			abortWithMessage(c, http.StatusForbidden, "Account is suspended")
			return
		}

		// Role lấy từ DB, không dùng role trong claims
		c.Set(ContextUserID, user.ID.String())
		c.Set(ContextRole, string(user.Role))
		c.Next()
	}
}

// OptionalAuthMiddleware: token sai hoặc thiếu thì coi như anonymous
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := utils.VerifyToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}
