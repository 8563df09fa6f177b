package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vnkhanh/devlearn-backend/config"
	"github.com/vnkhanh/devlearn-backend/models"
	"github.com/vnkhanh/devlearn-backend/ws"
)

func HealthCheck(c *gin.Context) {
	// Mặc định trạng thái OK
	response := gin.H{
		"status":    "ok",
		"message":   "Service is healthy",
		"timestamp": time.Now().Unix(),
		"db":        "ok",
		"websocket": gin.H{
			"enabled": true,
			"stats":   ws.H.Stats(),
		},
	}

	if config.DB == nil {
		response["db"] = "error: database not initialized"
		response["status"] = "degraded"
		c.JSON(http.StatusInternalServerError, response)
		return
	}

	sqlDB, err := config.DB.DB()
	if err != nil {
		response["db"] = "error: cannot get DB instance"
		response["status"] = "degraded"
		c.JSON(http.StatusInternalServerError, response)
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		response["db"] = "error: cannot connect to DB"
		response["status"] = "degraded"
		c.JSON(http.StatusInternalServerError, response)
		return
	}

	// Số lượng bản ghi catalog
	var subjects, topics int64
	ctx := c.Request.Context()
	if err := config.DB.WithContext(ctx).Model(&models.Subject{}).Count(&subjects).Error; err != nil {
		response["db"] = "error: cannot count subjects"
		response["status"] = "degraded"
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	if err := config.DB.WithContext(ctx).Model(&models.Topic{}).Count(&topics).Error; err != nil {
		response["db"] = "error: cannot count topics"
		response["status"] = "degraded"
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	response["catalog"] = gin.H{
		"subjects": subjects,
		"topics":   topics,
	}

	c.JSON(http.StatusOK, response)
}
