package ws

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var allowedOrigins []string

// SetAllowedOrigins giới hạn Origin được phép mở WebSocket; rỗng = cho phép tất cả
func SetAllowedOrigins(origins []string) {
	allowedOrigins = origins
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowedOrigins) == 0 {
			return true
		}
		for _, allowed := range allowedOrigins {
			if strings.EqualFold(origin, allowed) {
				return true
			}
		}
		return false
	},
}

// HandleCatalogWebSocket: client nhận sự kiện *_list_changed khi admin sửa catalog
func HandleCatalogWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Warn("WebSocket upgrade thất bại", zap.Error(err))
		return
	}

	client := H.Register(conn)
	defer H.Unregister(client)
	zap.L().Debug("catalog WS connected", zap.String("ip", c.ClientIP()))

	hello, _ := json.Marshal(gin.H{"type": "connected", "message": "Connected to catalog updates"})
	H.Send(client, hello)

	// Chỉ đọc để phát hiện client đóng kết nối
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
