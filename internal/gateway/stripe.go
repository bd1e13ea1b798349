package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeGateway implements PaymentGateway for Stripe
type StripeGateway struct {
	secretKey     string
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}
	return &StripeGateway{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
	}, nil
}

func (g *StripeGateway) Name() string {
	return "stripe"
}

// CreatePayment creates a Stripe PaymentIntent. Amounts are converted to the
// smallest currency unit.
func (g *StripeGateway) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*PaymentIntentResult, error) {
	stripe.Key = g.secretKey

	amountCents := int64(req.Amount * 100)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description:  stripe.String(req.Description),
		ReceiptEmail: stripe.String(req.CustomerEmail),
		Metadata: map[string]string{
			"order_id":     req.OrderID,
			"order_number": req.OrderNumber,
		},
	}
	for k, v := range req.Metadata {
		params.Metadata[k] = v
	}
	if req.IdempotencyKey != "" {
		params.IdempotencyKey = stripe.String(req.IdempotencyKey)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, g.wrapError(err)
	}

	return &PaymentIntentResult{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Status:          string(intent.Status),
	}, nil
}

// CreateRefund refunds a captured PaymentIntent
func (g *StripeGateway) CreateRefund(ctx context.Context, req *RefundRequest) (*RefundResult, error) {
	stripe.Key = g.secretKey

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.PaymentIntentID),
	}
	if req.Amount > 0 {
		params.Amount = stripe.Int64(int64(req.Amount * 100))
	}
	params.Metadata = map[string]string{}
	if req.OrderID != "" {
		params.Metadata["order_id"] = req.OrderID
	}
	if req.Reason != "" {
		params.Metadata["reason"] = req.Reason
	}
	if req.IdempotencyKey != "" {
		params.IdempotencyKey = stripe.String(req.IdempotencyKey)
	}

	ref, err := refund.New(params)
	if err != nil {
		return nil, g.wrapError(err)
	}

	return &RefundResult{
		RefundID: ref.ID,
		Status:   string(ref.Status),
		Amount:   float64(ref.Amount) / 100,
	}, nil
}

// VerifyWebhook validates the Stripe-Signature header and parses the event
func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("stripe webhook verification failed: %w", err)
	}

	parsed := &WebhookEvent{
		EventID:   event.ID,
		Gateway:   "stripe",
		EventType: WebhookUnknown,
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("parsing payment intent: %w", err)
		}
		parsed.PaymentIntentID = intent.ID
		parsed.OrderID = intent.Metadata["order_id"]
		parsed.Amount = float64(intent.Amount) / 100
		parsed.Currency = strings.ToUpper(string(intent.Currency))
		if event.Type == "payment_intent.succeeded" {
			parsed.EventType = WebhookPaymentSucceeded
		} else {
			parsed.EventType = WebhookPaymentFailed
			if intent.LastPaymentError != nil {
				parsed.FailureMessage = intent.LastPaymentError.Msg
			}
		}
	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return nil, fmt.Errorf("parsing charge: %w", err)
		}
		parsed.EventType = WebhookRefundSucceeded
		if charge.PaymentIntent != nil {
			parsed.PaymentIntentID = charge.PaymentIntent.ID
		}
		parsed.Amount = float64(charge.AmountRefunded) / 100
		parsed.Currency = strings.ToUpper(string(charge.Currency))
	}

	return parsed, nil
}

func (g *StripeGateway) wrapError(err error) error {
	if e, ok := err.(*stripe.Error); ok {
		return fmt.Errorf("stripe: %s (%s)", e.Msg, e.Code)
	}
	return fmt.Errorf("stripe: %w", err)
}
