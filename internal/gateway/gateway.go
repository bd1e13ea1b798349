// Package gateway abstracts the payment providers used at checkout.
package gateway

import (
	"context"
	"errors"
	"fmt"
)

var ErrUnknownGateway = errors.New("unknown payment gateway")

// PaymentGateway is the provider interface used by the order service
type PaymentGateway interface {
	// Name returns the gateway identifier ("stripe", "razorpay")
	Name() string

	// CreatePayment initiates a payment and returns provider references the
	// storefront needs to complete it.
	CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*PaymentIntentResult, error)

	// CreateRefund refunds a captured payment, fully or partially
	CreateRefund(ctx context.Context, req *RefundRequest) (*RefundResult, error)

	// VerifyWebhook checks the webhook signature and returns the parsed event
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// CreatePaymentRequest carries everything a provider needs to start a payment
type CreatePaymentRequest struct {
	OrderID        string
	OrderNumber    string
	Amount         float64
	Currency       string
	CustomerEmail  string
	CustomerName   string
	CustomerPhone  string
	Description    string
	IdempotencyKey string
	Metadata       map[string]string
}

// PaymentIntentResult references the provider-side payment
type PaymentIntentResult struct {
	PaymentIntentID string                 `json:"paymentIntentId"`
	ClientSecret    string                 `json:"clientSecret,omitempty"`
	PublicKey       string                 `json:"publicKey,omitempty"`
	CheckoutOptions map[string]interface{} `json:"checkoutOptions,omitempty"`
	Status          string                 `json:"status"`
}

// RefundRequest refunds a captured payment. OrderID travels with the refund
// so the provider echoes it back on the webhook.
type RefundRequest struct {
	PaymentIntentID string
	OrderID         string
	Amount          float64
	Currency        string
	Reason          string
	IdempotencyKey  string
}

// RefundResult references the provider-side refund
type RefundResult struct {
	RefundID string  `json:"refundId"`
	Status   string  `json:"status"`
	Amount   float64 `json:"amount"`
}

// WebhookEventType classifies provider webhook events
type WebhookEventType string

const (
	WebhookPaymentSucceeded WebhookEventType = "payment.succeeded"
	WebhookPaymentFailed    WebhookEventType = "payment.failed"
	WebhookRefundSucceeded  WebhookEventType = "refund.succeeded"
	WebhookUnknown          WebhookEventType = "unknown"
)

// WebhookEvent is a provider-neutral parsed webhook
type WebhookEvent struct {
	EventID         string           `json:"eventId"`
	EventType       WebhookEventType `json:"eventType"`
	Gateway         string           `json:"gateway"`
	PaymentIntentID string           `json:"paymentIntentId,omitempty"`
	OrderID         string           `json:"orderId,omitempty"`
	Amount          float64          `json:"amount,omitempty"`
	Currency        string           `json:"currency,omitempty"`
	FailureMessage  string           `json:"failureMessage,omitempty"`
}

// Registry holds the configured gateways keyed by name
type Registry struct {
	gateways map[string]PaymentGateway
}

func NewRegistry(gateways ...PaymentGateway) *Registry {
	r := &Registry{gateways: make(map[string]PaymentGateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.Name()] = g
	}
	return r
}

// Get resolves a gateway by name
func (r *Registry) Get(name string) (PaymentGateway, error) {
	g, ok := r.gateways[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGateway, name)
	}
	return g, nil
}

// Names lists the configured gateway identifiers
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	return names
}
