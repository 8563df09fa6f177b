package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vnkhanh/devlearn-backend/config"
	"github.com/vnkhanh/devlearn-backend/middleware"
	"github.com/vnkhanh/devlearn-backend/services"
)

var liveRunner = services.NewLiveRunner(2 * time.Second)

// ConfigureLiveCode đặt timeout cho mỗi lần chạy live code
func ConfigureLiveCode(timeout time.Duration) {
	liveRunner = services.NewLiveRunner(timeout)
}

type RunLiveCodeInput struct {
	Code      string         `json:"code"`
	Scope     map[string]any `json:"scope"`
	RenderKey int            `json:"renderKey"`
	Refresh   bool           `json:"refresh"`
	Split     *float64       `json:"split"`
	Drag      *DragInput     `json:"drag"`
}

// DragInput là vị trí thả thanh chia so với bề rộng khung
type DragInput struct {
	X     float64 `json:"x"`
	Width float64 `json:"width"`
}

type RunLiveCodeResponse struct {
	services.LiveResult
	Split float64 `json:"split"`
}

// POST /api/livecode/run
func RunLiveCode(c *gin.Context) {
	var input RunLiveCodeInput
	if !bindJSON(c, &input) {
		return
	}
	if strings.TrimSpace(input.Code) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "code is required"})
		return
	}

	c.JSON(http.StatusOK, renderLive(c, input.Code, input))
}

// POST /api/topics/:id/run chạy liveCode đã lưu của topic
func RunTopicLiveCode(c *gin.Context) {
	topic, err := services.NewTopicStore(config.DB).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if strings.TrimSpace(topic.LiveCode) == "" {
		c.JSON(http.StatusNotFound, gin.H{"message": "Topic has no live code"})
		return
	}

	var input RunLiveCodeInput
	if c.Request.ContentLength > 0 && !bindJSON(c, &input) {
		return
	}

	c.JSON(http.StatusOK, renderLive(c, topic.LiveCode, input))
}

func renderLive(c *gin.Context, code string, input RunLiveCodeInput) RunLiveCodeResponse {
	session := services.NewLiveSession(code, input.Scope)
	session.SetRenderKey(input.RenderKey)
	if input.Split != nil {
		session.Resize(*input.Split)
	}
	if input.Drag != nil {
		session.BeginDrag()
		session.DragTo(input.Drag.X, input.Drag.Width)
		session.EndDrag()
	}
	if input.Refresh {
		session.Refresh()
	}

	res := session.Render(c.Request.Context(), liveRunner)
	zap.L().Debug("live code rendered",
		zap.String("user_id", c.GetString(middleware.ContextUserID)),
		zap.Int("renderKey", res.RenderKey),
		zap.Bool("cached", res.Cached),
		zap.Int64("durationMs", res.DurationMs),
	)

	return RunLiveCodeResponse{
		LiveResult: res,
		Split:      session.Split(),
	}
}
