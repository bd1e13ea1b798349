package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"
)

// RazorpayGateway implements PaymentGateway for Razorpay
type RazorpayGateway struct {
	client        *razorpay.Client
	keyID         string
	keySecret     string
	webhookSecret string
}

func NewRazorpayGateway(keyID, keySecret, webhookSecret string) (*RazorpayGateway, error) {
	if keyID == "" || keySecret == "" {
		return nil, fmt.Errorf("razorpay key id and secret are required")
	}
	return &RazorpayGateway{
		client:        razorpay.NewClient(keyID, keySecret),
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
	}, nil
}

func (g *RazorpayGateway) Name() string {
	return "razorpay"
}

// CreatePayment creates a Razorpay order. Amounts are converted to the
// smallest currency unit.
func (g *RazorpayGateway) CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*PaymentIntentResult, error) {
	amountMinor := int64(req.Amount * 100)

	orderData := map[string]interface{}{
		"amount":   amountMinor,
		"currency": strings.ToUpper(req.Currency),
		"receipt":  req.OrderNumber,
		"notes": map[string]string{
			"order_id": req.OrderID,
		},
	}

	order, err := g.client.Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}

	orderID, _ := order["id"].(string)
	status, _ := order["status"].(string)

	return &PaymentIntentResult{
		PaymentIntentID: orderID,
		PublicKey:       g.keyID,
		Status:          status,
		CheckoutOptions: map[string]interface{}{
			"key":      g.keyID,
			"order_id": orderID,
			"amount":   amountMinor,
			"currency": strings.ToUpper(req.Currency),
			"name":     "Gastro Compare",
			"prefill": map[string]string{
				"name":    req.CustomerName,
				"email":   req.CustomerEmail,
				"contact": req.CustomerPhone,
			},
		},
	}, nil
}

// CreateRefund refunds a captured payment. The order id rides along in the
// refund notes so the refund webhook can be correlated back to the order.
func (g *RazorpayGateway) CreateRefund(ctx context.Context, req *RefundRequest) (*RefundResult, error) {
	notes := map[string]string{}
	if req.OrderID != "" {
		notes["order_id"] = req.OrderID
	}
	if req.Reason != "" {
		notes["reason"] = req.Reason
	}
	data := map[string]interface{}{}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	ref, err := g.client.Payment.Refund(req.PaymentIntentID, int(req.Amount*100), data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay refund: %w", err)
	}

	refundID, _ := ref["id"].(string)
	status, _ := ref["status"].(string)
	amount := req.Amount
	if raw, ok := ref["amount"].(float64); ok {
		amount = raw / 100
	}

	return &RefundResult{
		RefundID: refundID,
		Status:   status,
		Amount:   amount,
	}, nil
}

// razorpayWebhookPayload mirrors the subset of the webhook body we consume
type razorpayWebhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID               string  `json:"id"`
				OrderID          string  `json:"order_id"`
				Amount           float64 `json:"amount"`
				Currency         string  `json:"currency"`
				ErrorDescription string  `json:"error_description"`
				Notes            struct {
					OrderID string `json:"order_id"`
				} `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
		Refund struct {
			Entity struct {
				ID        string  `json:"id"`
				PaymentID string  `json:"payment_id"`
				Amount    float64 `json:"amount"`
				Currency  string  `json:"currency"`
				Notes     struct {
					OrderID string `json:"order_id"`
				} `json:"notes"`
			} `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
}

// VerifyWebhook validates the X-Razorpay-Signature HMAC and parses the event
func (g *RazorpayGateway) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if !g.verifySignature(payload, signature) {
		return nil, fmt.Errorf("razorpay webhook signature verification failed")
	}

	var body razorpayWebhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("parsing razorpay webhook: %w", err)
	}

	event := &WebhookEvent{
		Gateway:   "razorpay",
		EventType: WebhookUnknown,
	}

	switch body.Event {
	case "payment.captured":
		event.EventType = WebhookPaymentSucceeded
		entity := body.Payload.Payment.Entity
		event.PaymentIntentID = entity.OrderID
		event.OrderID = entity.Notes.OrderID
		event.Amount = entity.Amount / 100
		event.Currency = entity.Currency
	case "payment.failed":
		event.EventType = WebhookPaymentFailed
		entity := body.Payload.Payment.Entity
		event.PaymentIntentID = entity.OrderID
		event.OrderID = entity.Notes.OrderID
		event.FailureMessage = entity.ErrorDescription
	case "refund.processed":
		event.EventType = WebhookRefundSucceeded
		entity := body.Payload.Refund.Entity
		event.PaymentIntentID = entity.PaymentID
		event.OrderID = entity.Notes.OrderID
		event.Amount = entity.Amount / 100
		event.Currency = entity.Currency
	}

	return event, nil
}

// verifySignature checks the HMAC-SHA256 of the raw body against the header
func (g *RazorpayGateway) verifySignature(payload []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
