package handler

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"sceneforge/log"
)

var upgrader = websocket.Upgrader{
	// Local tool, any origin may subscribe to progress.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ProgressEvent is one pipeline progress update pushed to clients.
type ProgressEvent struct {
	TaskID  string `json:"task_id"`
	Percent uint8  `json:"percent"`
	Message string `json:"message"`
}

// ProgressHub fans pipeline progress out to websocket subscribers. A slow or
// dead client is dropped rather than blocking the pipeline.
type ProgressHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{conns: make(map[*websocket.Conn]struct{})}
}

// Broadcast implements types.ProgressFunc.
func (h *ProgressHub) Broadcast(taskID string, pct uint8, msg string) {
	event := ProgressEvent{TaskID: taskID, Percent: pct, Message: msg}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(event); err != nil {
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

func (h *ProgressHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *ProgressHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.conns[conn]; ok {
		conn.Close()
		delete(h.conns, conn)
	}
	h.mu.Unlock()
}

// TaskProgressWS upgrades the connection and streams progress events until
// the client goes away.
func (h *Handler) TaskProgressWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.GetLogger().Error("websocket upgrade failed", zap.Error(err))
		return
	}

	h.hub.add(conn)
	defer h.hub.remove(conn)

	// Drain client messages so pings are answered; the first read error
	// means the client disconnected.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
