package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/udiptgupta/Risk-lab/pkg/models"
	"github.com/udiptgupta/Risk-lab/pkg/utils/logger"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// dashboard and API are served from different origins in dev
		return true
	},
}

// Message is the envelope sent to dashboard clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// subscription is the only inbound message clients send: an optional filter
// restricting updates to specific bond IDs. An empty list means all bonds.
type subscription struct {
	Type    string  `json:"type"`
	BondIDs []int64 `json:"bond_ids"`
}

// Hub maintains the set of connected dashboard clients and pushes freshly
// computed risk metrics to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan models.MetricsRecord
	register   chan *Client
	unregister chan *Client
	log        *logger.Logger
	mu         sync.RWMutex
}

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	bondIDs map[int64]bool
	mu      sync.RWMutex
}

// NewHub creates a hub with no connected clients.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan models.MetricsRecord, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        logger.GetLogger("websocket.hub"),
	}
}

// Run processes registrations and broadcasts until the context is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.Infof("Client connected, %d active", h.clientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.log.Infof("Client disconnected, %d active", h.clientCount())

		case record := <-h.broadcast:
			h.deliver(record)
		}
	}
}

// Broadcast queues a metrics record for delivery to interested clients.
// Records are dropped when the hub's buffer is full rather than blocking the
// producer.
func (h *Hub) Broadcast(record models.MetricsRecord) {
	select {
	case h.broadcast <- record:
	default:
		h.log.Warn("Broadcast buffer full, dropping metrics update")
	}
}

// ServeWS upgrades an HTTP request to a websocket connection and registers
// the client with the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("Failed to upgrade connection: %v", err)
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 64),
		bondIDs: make(map[int64]bool),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) deliver(record models.MetricsRecord) {
	payload, err := json.Marshal(Message{Type: "risk_metrics", Data: record})
	if err != nil {
		h.log.Errorf("Failed to marshal metrics update: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if !client.wants(record.BondID) {
			continue
		}
		select {
		case client.send <- payload:
		default:
			// slow client: skip this update instead of stalling the hub
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

func (c *Client) wants(bondID int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.bondIDs) == 0 {
		return true
	}
	return c.bondIDs[bondID]
}

// readPump consumes subscription messages from the peer and tears the client
// down when the connection drops.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var sub subscription
		if err := json.Unmarshal(payload, &sub); err != nil || sub.Type != "subscribe" {
			continue
		}

		c.mu.Lock()
		c.bondIDs = make(map[int64]bool, len(sub.BondIDs))
		for _, id := range sub.BondIDs {
			c.bondIDs[id] = true
		}
		c.mu.Unlock()
	}
}

// writePump forwards hub messages to the peer and keeps the connection alive
// with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
