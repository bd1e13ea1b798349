package events

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
)

// CartStaler flags open-cart items referencing a changed product. The carts
// repository implements it.
type CartStaler interface {
	MarkItemsStaleByProduct(productID uuid.UUID, reason string) (int64, error)
}

// ProductSubscriber consumes product change events and flags matching items
// in open carts as stale so the storefront can prompt a re-check.
type ProductSubscriber struct {
	js           jetstream.JetStream
	carts        CartStaler
	consumerName string
	logger       *logrus.Entry
}

func NewProductSubscriber(js jetstream.JetStream, carts CartStaler, logger *logrus.Logger) *ProductSubscriber {
	hostname, _ := os.Hostname()
	return &ProductSubscriber{
		js:           js,
		carts:        carts,
		consumerName: fmt.Sprintf("cart-staleness-%s", hostname),
		logger:       logger.WithField("component", "product-subscriber"),
	}
}

// Start begins consuming product events until the context is cancelled
func (s *ProductSubscriber) Start(ctx context.Context) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamProducts, jetstream.ConsumerConfig{
		Durable:       s.consumerName,
		FilterSubject: "product.>",
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       30 * time.Second,
		MaxDeliver:    3,
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create product events consumer: %w", err)
	}

	go s.consumeLoop(ctx, consumer)
	s.logger.Info("Listening for product events")
	return nil
}

func (s *ProductSubscriber) consumeLoop(ctx context.Context, consumer jetstream.Consumer) {
	msgs, err := consumer.Messages()
	if err != nil {
		s.logger.WithError(err).Error("Failed to get messages iterator")
		return
	}

	for {
		select {
		case <-ctx.Done():
			msgs.Stop()
			return
		default:
			msg, err := msgs.Next()
			if err != nil {
				if err == context.Canceled {
					return
				}
				s.logger.WithError(err).Warn("Error getting next message")
				time.Sleep(time.Second)
				continue
			}

			if err := s.handle(msg); err != nil {
				s.logger.WithError(err).Warn("Error handling product event")
				msg.Nak()
			} else {
				msg.Ack()
			}
		}
	}
}

func (s *ProductSubscriber) handle(msg jetstream.Msg) error {
	var event ProductEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		return fmt.Errorf("unmarshal product event: %w", err)
	}
	return s.process(event)
}

// process applies one decoded product event. Quantity carries the absolute
// on-hand amount, so only a drop to zero flags carts.
func (s *ProductSubscriber) process(event ProductEvent) error {
	productID, err := uuid.Parse(event.ProductID)
	if err != nil {
		return fmt.Errorf("invalid product id %q: %w", event.ProductID, err)
	}

	var reason string
	switch event.EventType {
	case SubjectProductPriceSet:
		reason = "price changed"
	case SubjectProductDeleted:
		reason = "product removed"
	case SubjectProductStock:
		if event.Quantity == nil || *event.Quantity > 0 {
			// Stock remains, nothing to flag
			return nil
		}
		reason = "out of stock"
	case SubjectProductUpdated:
		reason = "product changed"
	default:
		return nil
	}

	flagged, err := s.carts.MarkItemsStaleByProduct(productID, reason)
	if err != nil {
		return fmt.Errorf("marking cart items stale: %w", err)
	}
	if flagged > 0 {
		s.logger.WithFields(logrus.Fields{
			"productId": productID,
			"reason":    reason,
			"items":     flagged,
		}).Info("Flagged stale cart items")
	}
	return nil
}
