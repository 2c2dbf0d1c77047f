// Package dashboard pushes live lead activity to connected dashboards.
package dashboard

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

// Message is one frame on the feed.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type client struct {
	room string
	send chan []byte
}

// Hub fans events out to clients grouped by microsite room.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *logging.Logger

	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

// NewHub creates a hub. A nil allowOrigin accepts every origin.
func NewHub(allowOrigin func(string) bool, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	if allowOrigin == nil {
		allowOrigin = func(string) bool { return true }
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return allowOrigin(r.Header.Get("Origin"))
			},
		},
		logger: logger,
		rooms:  make(map[string]map[*client]struct{}),
	}
}

// Broadcast sends event to every client in room. Clients whose buffer is
// full are dropped.
func (h *Hub) Broadcast(room, event string, payload any) {
	body, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		h.logger.Warn("dashboard payload encode failed", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.rooms[room] {
		select {
		case c.send <- body:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("dropping slow dashboard client", "room", room)
		h.leave(c)
	}
}

// Clients returns the number of clients in room.
func (h *Hub) Clients(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// ServeHTTP upgrades GET /dashboard/ws?microsite=... and joins that room.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("microsite")
	if room == "" {
		http.Error(w, "microsite is required", http.StatusBadRequest)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("dashboard upgrade failed", "error", err)
		return
	}

	c := &client{room: room, send: make(chan []byte, sendBuffer)}
	h.join(c)
	h.logger.Debug("dashboard client joined", "room", room)

	go h.writePump(conn, c)
	h.readPump(conn, c)
}

func (h *Hub) join(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[c.room]
	if !ok {
		members = make(map[*client]struct{})
		h.rooms[c.room] = members
	}
	members[c] = struct{}{}
}

func (h *Hub) leave(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[c.room]
	if !ok {
		return
	}
	if _, ok := members[c]; !ok {
		return
	}
	delete(members, c)
	close(c.send)
	if len(members) == 0 {
		delete(h.rooms, c.room)
	}
}

// readPump discards client input and keeps the connection alive.
func (h *Hub) readPump(conn *websocket.Conn, c *client) {
	defer func() {
		h.leave(c)
		conn.Close()
	}()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case body, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
