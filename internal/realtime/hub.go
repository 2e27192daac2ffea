package realtime

import (
	"encoding/json"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/saeid-a/SocialGoBack/internal/logger"
)

// Hub fans presence events out to every connected client so they can refresh
// their nearby list without polling. Delivery is best-effort: a slow client
// is dropped rather than allowed to back the hub up.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *PresenceEvent
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

type PresenceEvent struct {
	Type      string `json:"type"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	GoMode    bool   `json:"go_mode"`
	Timestamp string `json:"timestamp"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *PresenceEvent, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
		case client := <-h.unregister:
			if _, exists := h.clients[client]; exists {
				delete(h.clients, client)
				close(client.send)
			}
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastPresence queues a go-mode change for fan-out. Events are dropped
// if the hub's queue is full; a missed event only delays the next poll.
func (h *Hub) BroadcastPresence(userID, username string, goMode bool) {
	event := &PresenceEvent{
		Type:      "presence",
		UserID:    userID,
		Username:  username,
		GoMode:    goMode,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	select {
	case h.broadcast <- event:
	default:
		logger.Log.WithField("user_id", userID).Warn("presence queue full, dropping event")
	}
}

func (h *Hub) deliver(event *PresenceEvent) {
	encoded, err := json.Marshal(event)
	if err != nil {
		logger.Log.WithError(err).Error("presence hub encode event")
		return
	}

	for client := range h.clients {
		// A broadcaster does not need its own presence echoed back.
		if client.userID == event.UserID {
			continue
		}
		select {
		case client.send <- encoded:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// ReadPump discards inbound frames; the presence feed is one-way. It exists
// to detect the close frame and unregister the client.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
