package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/devlearn-backend/config"
	"github.com/vnkhanh/devlearn-backend/services"
	"github.com/vnkhanh/devlearn-backend/ws"
)

var theoryRenderer = services.NewTheoryRenderer("jsx")

// GET /api/topics?subject=react
func GetTopics(c *gin.Context) {
	filter := services.TopicFilter{Subject: c.Query("subject")}
	topics, err := services.NewTopicStore(config.DB).List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, topics)
}

// GET /api/topics/:id (id lưu trữ hoặc topicId)
func GetTopicDetail(c *gin.Context) {
	topic, err := services.NewTopicStore(config.DB).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.NewTopicView(*topic))
}

// GET /api/topics/:id/theory
func GetTopicTheory(c *gin.Context) {
	topic, err := services.NewTopicStore(config.DB).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	rendered, err := theoryRenderer.Render(*topic)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rendered)
}

// POST /api/topics
func CreateTopic(c *gin.Context) {
	var input services.TopicInput
	if !bindJSON(c, &input) {
		return
	}

	topic, err := services.NewTopicStore(config.DB).Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	ws.BroadcastTopicListChanged("created", topic.TopicID)
	c.JSON(http.StatusCreated, topic)
}

// PUT /api/topics/:id
func UpdateTopic(c *gin.Context) {
	var input services.TopicInput
	if !bindJSON(c, &input) {
		return
	}

	topic, err := services.NewTopicStore(config.DB).Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}

	ws.BroadcastTopicListChanged("updated", topic.TopicID)
	c.JSON(http.StatusOK, topic)
}

// DELETE /api/topics/:id
func DeleteTopic(c *gin.Context) {
	id := c.Param("id")
	if err := services.NewTopicStore(config.DB).Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	ws.BroadcastTopicListChanged("deleted", id)
	c.JSON(http.StatusOK, gin.H{"message": "Topic removed"})
}
