package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const sendBufferSize = 64

// Các loại sự kiện catalog gửi cho client để client tự refresh danh sách
const (
	EventSubjectListChanged = "subject_list_changed"
	EventTopicListChanged   = "topic_list_changed"
)

type CatalogEvent struct {
	Type   string `json:"type"`
	Action string `json:"action,omitempty"` // created | updated | deleted
	ID     string `json:"id,omitempty"`
}

type Client struct {
	conn *websocket.Conn
	send chan []byte
}

type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// H là hub dùng chung cho toàn bộ server
var H = NewHub()

// Register thêm client và chạy write pump riêng cho nó
func (h *Hub) Register(conn *websocket.Conn) *Client {
	client := &Client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	go client.writePump()
	return client
}

// Unregister có thể gọi nhiều lần
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// Broadcast gửi cho mọi client; client chậm (buffer đầy) bị bỏ qua message này
func (h *Hub) Broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
		}
	}
}

func (h *Hub) Send(client *Client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	select {
	case client.send <- data:
	default:
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close ngắt toàn bộ client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

func (h *Hub) Stats() map[string]int {
	return map[string]int{"clients": h.Count()}
}

func (c *Client) writePump() {
	defer func() {
		_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
		_ = c.conn.Close()
	}()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// PublishCatalogEvent phát sự kiện thay đổi catalog tới hub
func (h *Hub) PublishCatalogEvent(event CatalogEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("marshal catalog event", zap.Error(err))
		return
	}
	h.Broadcast(data)
}

func BroadcastSubjectListChanged(action, id string) {
	H.PublishCatalogEvent(CatalogEvent{Type: EventSubjectListChanged, Action: action, ID: id})
}

func BroadcastTopicListChanged(action, id string) {
	H.PublishCatalogEvent(CatalogEvent{Type: EventTopicListChanged, Action: action, ID: id})
}
