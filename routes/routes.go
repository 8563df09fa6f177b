package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vnkhanh/devlearn-backend/controllers"
	"github.com/vnkhanh/devlearn-backend/middleware"
	"github.com/vnkhanh/devlearn-backend/ws"
)

func SetupRouter(r *gin.Engine) *gin.Engine {
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API is running...")
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/google", controllers.GoogleLogin)
	}

	admin := middleware.RequireAdmin()

	// Môn học: đọc công khai, ghi cần admin
	subjects := api.Group("/subjects")
	{
		subjects.GET("", controllers.GetSubjects)
		subjects.GET("/:id", controllers.GetSubjectDetail)
		subjects.GET("/:id/navigation", controllers.GetSubjectNavigation)

		adminSubjects := subjects.Group("", admin...)
		adminSubjects.POST("", controllers.CreateSubject)
		adminSubjects.PUT("/:id", controllers.UpdateSubject)
		adminSubjects.DELETE("/:id", controllers.DeleteSubject)
	}

	// Chủ đề
	topics := api.Group("/topics")
	{
		topics.GET("", controllers.GetTopics)
		topics.GET("/:id", controllers.GetTopicDetail)
		topics.GET("/:id/theory", controllers.GetTopicTheory)
		topics.POST("/:id/run", middleware.OptionalAuthMiddleware(), controllers.RunTopicLiveCode)

		adminTopics := topics.Group("", admin...)
		adminTopics.POST("", controllers.CreateTopic)
		adminTopics.PUT("/:id", controllers.UpdateTopic)
		adminTopics.DELETE("/:id", controllers.DeleteTopic)
	}

	api.POST("/livecode/run", middleware.OptionalAuthMiddleware(), controllers.RunLiveCode)

	r.GET("/ws/catalog", ws.HandleCatalogWebSocket)

	return r
}
