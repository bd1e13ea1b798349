// Package chat implements the websocket hub behind live support
// conversations.
package chat

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one websocket connection subscribed to a conversation
type Client struct {
	hub            *Hub
	conn           *websocket.Conn
	send           chan []byte
	user           *models.User
	conversationID uuid.UUID

	// limiter throttles inbound frames per client
	limiter *rate.Limiter

	writeMu sync.Mutex

	// sendMu guards send against enqueue-after-close. The read pump keeps
	// running after an eviction, so its error frames race the close.
	sendMu sync.Mutex
	closed bool
}

// enqueue queues a frame for the write pump. It reports false when the
// client is closed or its buffer is full.
func (c *Client) enqueue(payload []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// shutdown closes the send channel exactly once
func (c *Client) shutdown() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// InboundMessage is the frame clients send over the socket
type InboundMessage struct {
	Type string `json:"type"`
	Body string `json:"body,omitempty"`
}

// OutboundMessage is the frame the hub pushes to clients
type OutboundMessage struct {
	Type    string              `json:"type"`
	Message *models.ChatMessage `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// MessageSink receives messages typed into the socket, normally the chat
// service which persists and re-broadcasts them.
type MessageSink interface {
	SendMessage(user *models.User, conversationID uuid.UUID, req *models.SendMessageRequest) (*models.ChatMessage, error)
}

// Hub tracks connected clients per conversation and fans messages out
type Hub struct {
	mu sync.RWMutex
	// subscribers maps a conversation to its connected clients
	subscribers map[uuid.UUID]map[*Client]struct{}

	sink     MessageSink
	upgrader websocket.Upgrader
	logger   *logrus.Entry
}

func NewHub(sink MessageSink, logger *logrus.Logger) *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[*Client]struct{}),
		sink:        sink,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.WithField("component", "chat-hub"),
	}
}

// Serve upgrades the connection and runs the client pumps. The caller has
// already authenticated the user and authorized conversation access.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, user *models.User, conversationID uuid.UUID) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:            h,
		conn:           conn,
		send:           make(chan []byte, 64),
		user:           user,
		conversationID: conversationID,
		// 1 message per second sustained, bursts of 5
		limiter: rate.NewLimiter(rate.Limit(1), 5),
	}

	h.register(client)
	go client.writePump()
	go client.readPump()

	h.logger.WithFields(logrus.Fields{
		"conversationId": conversationID,
		"userId":         user.ID,
	}).Debug("Client connected")
	return nil
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[c.conversationID] == nil {
		h.subscribers[c.conversationID] = make(map[*Client]struct{})
	}
	h.subscribers[c.conversationID][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.subscribers[c.conversationID]; ok {
		if _, ok := clients[c]; ok {
			delete(clients, c)
			c.shutdown()
			if len(clients) == 0 {
				delete(h.subscribers, c.conversationID)
			}
		}
	}
}

// BroadcastMessage pushes a persisted message to every client in the
// conversation. Clients with a full send buffer are dropped as dead.
func (h *Hub) BroadcastMessage(conversationID uuid.UUID, message *models.ChatMessage) {
	payload, err := json.Marshal(OutboundMessage{Type: "message", Message: message})
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal outbound message")
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.subscribers[conversationID]))
	for c := range h.subscribers[conversationID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.enqueue(payload) {
			h.unregister(c)
			c.conn.Close()
		}
	}
}

// ConnectedClients reports the number of clients in a conversation
func (h *Hub) ConnectedClients(conversationID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[conversationID])
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.WithError(err).Debug("Unexpected close")
			}
			return
		}

		if !c.limiter.Allow() {
			c.sendError("rate limit exceeded")
			continue
		}

		var inbound InboundMessage
		if err := json.Unmarshal(data, &inbound); err != nil {
			c.sendError("invalid message format")
			continue
		}
		if inbound.Type != "message" || inbound.Body == "" {
			continue
		}

		// Persisting triggers the broadcast back to all subscribers,
		// including this client.
		if _, err := c.hub.sink.SendMessage(c.user, c.conversationID, &models.SendMessageRequest{Body: inbound.Body}); err != nil {
			c.sendError(err.Error())
		}
	}
}

func (c *Client) sendError(message string) {
	payload, _ := json.Marshal(OutboundMessage{Type: "error", Error: message})
	c.enqueue(payload)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.writeMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				c.writeMu.Unlock()
				return
			}
			err := c.conn.WriteMessage(websocket.TextMessage, payload)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-ticker.C:
			c.writeMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
