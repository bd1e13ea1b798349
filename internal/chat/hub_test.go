package chat

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
)

func newTestHub() *Hub {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewHub(nil, logger)
}

func newTestClient(h *Hub, conversationID uuid.UUID, buffer int) *Client {
	return &Client{
		hub:            h,
		send:           make(chan []byte, buffer),
		user:           &models.User{ID: uuid.New()},
		conversationID: conversationID,
		limiter:        rate.NewLimiter(rate.Limit(1), 5),
	}
}

func TestUnregister_RemovesClient(t *testing.T) {
	hub := newTestHub()
	conversationID := uuid.New()
	client := newTestClient(hub, conversationID, 1)

	hub.register(client)
	assert.Equal(t, 1, hub.ConnectedClients(conversationID))

	hub.unregister(client)
	assert.Equal(t, 0, hub.ConnectedClients(conversationID))
}

func TestUnregister_Idempotent(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, uuid.New(), 1)

	hub.register(client)
	hub.unregister(client)
	assert.NotPanics(t, func() {
		hub.unregister(client)
	})
}

func TestSendError_AfterEviction(t *testing.T) {
	hub := newTestHub()
	conversationID := uuid.New()
	client := newTestClient(hub, conversationID, 1)
	hub.register(client)

	// A slow client gets evicted while its read pump is still running;
	// the pump's next throttled frame must not bring the process down.
	hub.unregister(client)

	assert.NotPanics(t, func() {
		client.sendError("rate limit exceeded")
	})
	assert.NotPanics(t, func() {
		client.sendError("invalid message format")
	})
}

func TestEnqueue_AfterShutdown(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, uuid.New(), 1)
	hub.register(client)
	hub.unregister(client)

	assert.False(t, client.enqueue([]byte(`{"type":"message"}`)))
}

func TestEnqueue_FullBuffer(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, uuid.New(), 1)

	assert.True(t, client.enqueue([]byte("a")))
	assert.False(t, client.enqueue([]byte("b")))
}

func TestBroadcastMessage_ReachesLiveClientsAfterEviction(t *testing.T) {
	hub := newTestHub()
	conversationID := uuid.New()
	evicted := newTestClient(hub, conversationID, 1)
	live := newTestClient(hub, conversationID, 8)
	hub.register(evicted)
	hub.register(live)

	hub.unregister(evicted)

	message := &models.ChatMessage{ID: uuid.New(), ConversationID: conversationID, Body: "still here?"}
	assert.NotPanics(t, func() {
		hub.BroadcastMessage(conversationID, message)
	})

	select {
	case payload := <-live.send:
		assert.Contains(t, string(payload), "still here?")
	default:
		t.Fatal("live client received nothing")
	}
	assert.Empty(t, evicted.send)
}
