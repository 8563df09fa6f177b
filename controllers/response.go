package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vnkhanh/devlearn-backend/services"
)

// respondError ánh xạ lỗi service sang HTTP status với body {"message": ...}
func respondError(c *gin.Context, err error) {
	appErr := services.AsError(err)
	status := appErr.Status()
	if status >= http.StatusInternalServerError {
		zap.L().Error(appErr.Message,
			zap.String("path", c.FullPath()),
			zap.Error(appErr.Err),
		)
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"message": appErr.Message})
}

// bindJSON đọc body JSON; body sai định dạng trả 400
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body: " + err.Error()})
		return false
	}
	return true
}
