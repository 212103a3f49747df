package status

import (
	"encoding/json"
	"locate-route-service/internal/domain"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	clientBuffer = 8
	writeWait    = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // kiosk page may be served from another origin
	},
}

// Hub pushes status updates to connected websocket clients. A new client
// first receives the current line. Clients that fall behind are dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
	latest  []byte
	now     func() time.Time
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*wsClient]struct{}), now: time.Now}
}

func (h *Hub) Publish(s domain.Status) {
	payload, err := json.Marshal(Message{Kind: "status", Message: s.Message, Progress: s.Progress, Timestamp: h.now()})
	if err != nil {
		log.Printf("status ws: marshal error: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = payload
	h.broadcastLocked(payload)
}

func (h *Hub) Alert(msg string) {
	payload, err := json.Marshal(Message{Kind: "alert", Message: msg, Timestamp: h.now()})
	if err != nil {
		log.Printf("status ws: marshal error: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastLocked(payload)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcastLocked queues payload for every client. h.mu must be held.
func (h *Hub) broadcastLocked(payload []byte) {
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			log.Printf("status ws: client %s too slow, dropping", c.conn.RemoteAddr())
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("status ws: upgrade error: %v", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	if h.latest != nil {
		c.send <- h.latest
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	log.Printf("status ws: client connected addr=%s clients=%d", conn.RemoteAddr(), h.Clients())

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) writeLoop(c *wsClient) {
	defer c.conn.Close()

	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("status ws: write error: %v", err)
			h.remove(c)
			return
		}
	}
}

// readLoop discards client messages and unregisters on close.
func (h *Hub) readLoop(c *wsClient) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.remove(c)
			log.Printf("status ws: client disconnected addr=%s clients=%d", c.conn.RemoteAddr(), h.Clients())
			return
		}
	}
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}
