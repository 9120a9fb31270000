package commit

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"drawboard/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxReadSize    = 4 * 1024
	clientSendSize = 16
)

var hubUpgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 32 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		return strings.Contains(origin, "://"+strings.TrimSpace(r.Host))
	},
}

// LatestFunc looks up the last known update of an element set, used to
// prime newly connected clients.
type LatestFunc func(ctx context.Context, elementSetID string) (domain.ElementSetUpdate, error)

// Hub broadcasts commits over WebSocket to the clients watching each
// element set. Clients connect to /ws?elementSetId=<id>.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*hubClient]struct{}
	latest  LatestFunc
}

type hubClient struct {
	conn         *websocket.Conn
	send         chan []byte
	elementSetID string
	once         sync.Once
}

func (c *hubClient) close() {
	c.once.Do(func() { close(c.send) })
}

func NewHub(latest LatestFunc) *Hub {
	return &Hub{
		clients: map[string]map[*hubClient]struct{}{},
		latest:  latest,
	}
}

func (h *Hub) Name() string { return "hub" }

func (h *Hub) Deliver(_ context.Context, msg domain.ElementSetUpdate) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	h.Broadcast(msg.TargetElementSetID, data)
	return nil
}

// Broadcast queues data for every client of elementSetID. Clients whose
// queue is full are disconnected.
func (h *Hub) Broadcast(elementSetID string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[elementSetID] {
		select {
		case c.send <- data:
		default:
			log.Printf("[hub] dropping slow client on %s", elementSetID)
			h.removeLocked(c)
		}
	}
}

// ClientCount reports how many clients watch elementSetID.
func (h *Hub) ClientCount(elementSetID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[elementSetID])
}

func (h *Hub) add(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[c.elementSetID]
	if set == nil {
		set = map[*hubClient]struct{}{}
		h.clients[c.elementSetID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) remove(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *hubClient) {
	set := h.clients[c.elementSetID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.elementSetID)
	}
	c.close()
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for c := range set {
			h.removeLocked(c)
		}
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("elementSetId"))
	if id == "" {
		http.Error(w, "elementSetId is required", http.StatusBadRequest)
		return
	}
	conn, err := hubUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &hubClient{conn: conn, send: make(chan []byte, clientSendSize), elementSetID: id}
	if h.latest != nil {
		if msg, err := h.latest(r.Context(), id); err == nil {
			if data, err := json.Marshal(msg); err == nil {
				c.send <- data
			}
		}
	}
	h.add(c)

	go c.writePump()
	c.readPump()
	h.remove(c)
}

// readPump discards client frames; it exists to notice disconnects and
// answer pings.
func (c *hubClient) readPump() {
	c.conn.SetReadLimit(maxReadSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *hubClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
