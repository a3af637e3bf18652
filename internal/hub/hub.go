package hub

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	EventNewOrder                = "NewOrder"
	EventOrderStatusChanged      = "OrderStatusChanged"
	EventCartItemQuantityUpdated = "CartItemQuantityUpdated"
	EventCartUpdated             = "CartUpdated"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Event is the JSON frame pushed to browsers.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Identify resolves the signed-in user of a websocket request.
type Identify func(r *http.Request) (uuid.UUID, bool)

type client struct {
	conn   *websocket.Conn
	userID uuid.UUID
	send   chan []byte
}

// Hub fans events out to connected websocket clients.
type Hub struct {
	name     string
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func New(name string) *Hub {
	return &Hub{
		name: name,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*client]struct{}),
	}
}

// ServeWS upgrades requests from identified users and keeps the socket open
// until the browser goes away.
func (h *Hub) ServeWS(identify Identify) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := identify(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("Websocket upgrade failed", "hub", h.name, "error", err)
			return
		}
		c := h.register(userID, conn)
		go h.writePump(c)
		h.readPump(c)
	}
}

// register adds conn to the hub under userID.
func (h *Hub) register(userID uuid.UUID, conn *websocket.Conn) *client {
	c := &client{conn: conn, userID: userID, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	slog.Debug("Websocket connected", "hub", h.name, "user_id", userID)
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Broadcast(ev Event) {
	h.deliver(ev, func(*client) bool { return true })
}

func (h *Hub) SendToUser(userID uuid.UUID, ev Event) {
	h.deliver(ev, func(c *client) bool { return c.userID == userID })
}

func (h *Hub) deliver(ev Event, match func(*client) bool) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("Failed to encode hub event", "hub", h.name, "type", ev.Type, "error", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !match(c) {
			continue
		}
		select {
		case c.send <- data:
		default:
			// Slow reader; drop the frame rather than block publishers.
			slog.Warn("Dropping websocket event for slow client", "hub", h.name, "type", ev.Type)
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
