// Package events provides NATS JetStream publishing and subscription for
// marketplace events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
)

// Stream and subject layout
const (
	StreamProducts = "PRODUCT_EVENTS"
	StreamOrders   = "ORDER_EVENTS"
	StreamCarts    = "CART_EVENTS"
	StreamChat     = "CHAT_EVENTS"

	SubjectProductUpdated   = "product.updated"
	SubjectProductDeleted   = "product.deleted"
	SubjectProductPriceSet  = "product.price_changed"
	SubjectProductStock     = "product.stock_changed"
	SubjectOrderPlaced      = "order.placed"
	SubjectOrderStatus      = "order.status_changed"
	SubjectOrderRefunded    = "order.refunded"
	SubjectCartAbandoned    = "cart.abandoned"
	SubjectChatMessageSent  = "chat.message_sent"
)

// ProductEvent describes a catalog change that downstream consumers
// (cart staleness, caches) react to.
type ProductEvent struct {
	EventType string `json:"eventType"`
	ProductID string `json:"productId"`
	Name      string `json:"name,omitempty"`
	Price     string `json:"price,omitempty"`
	OldPrice  string `json:"oldPrice,omitempty"`
	// Quantity is the absolute on-hand quantity after the change, never a
	// delta.
	Quantity  *int      `json:"quantity,omitempty"`
	Status    string    `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderEvent describes an order lifecycle change
type OrderEvent struct {
	EventType   string    `json:"eventType"`
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	CustomerID  string    `json:"customerId"`
	Status      string    `json:"status,omitempty"`
	Total       float64   `json:"total,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// ChatEvent describes a support conversation message
type ChatEvent struct {
	EventType      string    `json:"eventType"`
	ConversationID string    `json:"conversationId"`
	MessageID      string    `json:"messageId"`
	SenderID       string    `json:"senderId"`
	SenderRole     string    `json:"senderRole"`
	Timestamp      time.Time `json:"timestamp"`
}

// CartEvent describes a cart lifecycle change
type CartEvent struct {
	EventType  string    `json:"eventType"`
	CartID     string    `json:"cartId"`
	CustomerID string    `json:"customerId"`
	ItemCount  int       `json:"itemCount"`
	Subtotal   float64   `json:"subtotal"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher publishes marketplace events to JetStream. Publishing is
// fire-and-forget so a slow broker never blocks request handling.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *logrus.Entry
}

// NewPublisher connects to NATS and ensures the marketplace streams exist
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("gastro-compare"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.WithField("url", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.WithError(err).Warn("NATS disconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	p := &Publisher{
		nc:     nc,
		js:     js,
		logger: logger.WithField("component", "events"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p.ensureStreams(ctx)

	return p, nil
}

func (p *Publisher) ensureStreams(ctx context.Context) {
	streams := map[string][]string{
		StreamProducts: {"product.>"},
		StreamOrders:   {"order.>"},
		StreamCarts:    {"cart.>"},
		StreamChat:     {"chat.>"},
	}
	for name, subjects := range streams {
		_, err := p.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:      name,
			Subjects:  subjects,
			Retention: jetstream.LimitsPolicy,
			MaxAge:    24 * time.Hour * 7,
			Storage:   jetstream.FileStorage,
			Replicas:  1,
		})
		if err != nil {
			p.logger.WithError(err).WithField("stream", name).Warn("Could not ensure stream")
		}
	}
}

// Close closes the NATS connection
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// JetStream exposes the JetStream context for subscribers sharing the
// connection.
func (p *Publisher) JetStream() jetstream.JetStream {
	return p.js
}

// publish serializes and publishes asynchronously
func (p *Publisher) publish(subject string, event interface{}) {
	go func() {
		data, err := json.Marshal(event)
		if err != nil {
			p.logger.WithError(err).WithField("subject", subject).Error("Failed to marshal event")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := p.js.Publish(ctx, subject, data); err != nil {
			p.logger.WithError(err).WithField("subject", subject).Warn("Failed to publish event")
			return
		}
		p.logger.WithField("subject", subject).Debug("Event published")
	}()
}

// PublishProductUpdated announces a product change
func (p *Publisher) PublishProductUpdated(event ProductEvent) {
	event.EventType = SubjectProductUpdated
	event.Timestamp = time.Now()
	p.publish(SubjectProductUpdated, event)
}

// PublishProductPriceChanged announces a price change
func (p *Publisher) PublishProductPriceChanged(event ProductEvent) {
	event.EventType = SubjectProductPriceSet
	event.Timestamp = time.Now()
	p.publish(SubjectProductPriceSet, event)
}

// PublishProductDeleted announces a product removal
func (p *Publisher) PublishProductDeleted(productID string) {
	p.publish(SubjectProductDeleted, ProductEvent{
		EventType: SubjectProductDeleted,
		ProductID: productID,
		Timestamp: time.Now(),
	})
}

// PublishProductStockChanged announces an inventory change. The quantity is
// the new absolute on-hand amount.
func (p *Publisher) PublishProductStockChanged(productID string, quantity int) {
	p.publish(SubjectProductStock, ProductEvent{
		EventType: SubjectProductStock,
		ProductID: productID,
		Quantity:  &quantity,
		Timestamp: time.Now(),
	})
}

// PublishOrderPlaced announces a new order
func (p *Publisher) PublishOrderPlaced(event OrderEvent) {
	event.EventType = SubjectOrderPlaced
	event.Timestamp = time.Now()
	p.publish(SubjectOrderPlaced, event)
}

// PublishOrderStatusChanged announces an order status transition
func (p *Publisher) PublishOrderStatusChanged(event OrderEvent) {
	event.EventType = SubjectOrderStatus
	event.Timestamp = time.Now()
	p.publish(SubjectOrderStatus, event)
}

// PublishOrderRefunded announces a refund
func (p *Publisher) PublishOrderRefunded(event OrderEvent) {
	event.EventType = SubjectOrderRefunded
	event.Timestamp = time.Now()
	p.publish(SubjectOrderRefunded, event)
}

// PublishChatMessageSent announces a new support message
func (p *Publisher) PublishChatMessageSent(event ChatEvent) {
	event.EventType = SubjectChatMessageSent
	event.Timestamp = time.Now()
	p.publish(SubjectChatMessageSent, event)
}

// PublishCartAbandoned announces an abandoned cart
func (p *Publisher) PublishCartAbandoned(event CartEvent) {
	event.EventType = SubjectCartAbandoned
	event.Timestamp = time.Now()
	p.publish(SubjectCartAbandoned, event)
}
