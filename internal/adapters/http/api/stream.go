package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/nbaelo/internal/domain/types"
	"github.com/okian/nbaelo/pkg/logger"
)

const streamWriteWait = 5 * time.Second

// Hub pushes a summary of every finished run to connected websocket clients.
type Hub struct {
	upgrader websocket.Upgrader
	logger   logger.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub(l logger.Logger) *Hub {
	if l == nil {
		l = logger.Nop()
	}
	return &Hub{
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		logger:   l,
		conns:    make(map[*websocket.Conn]struct{}),
	}
}

// HandleStream handles GET /stream. The connection stays registered until
// the client goes away; inbound messages are discarded.
func (h *Hub) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	h.add(conn)
	defer h.remove(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Publish sends sum to every client. Clients that fail the write are dropped.
func (h *Hub) Publish(sum types.RunSummary) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		_ = c.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := c.WriteJSON(sum); err != nil {
			_ = c.Close()
			delete(h.conns, c)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Hub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	_ = c.Close()
}
