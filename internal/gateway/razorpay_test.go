package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test"

func newTestRazorpayGateway(t *testing.T) *RazorpayGateway {
	t.Helper()
	g, err := NewRazorpayGateway("rzp_test_key", "rzp_test_secret", testWebhookSecret)
	require.NoError(t, err)
	return g
}

func signRazorpayPayload(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhook_RejectsBadSignature(t *testing.T) {
	g := newTestRazorpayGateway(t)

	payload := []byte(`{"event":"payment.captured"}`)
	_, err := g.VerifyWebhook(payload, "deadbeef")
	assert.Error(t, err)
}

func TestVerifyWebhook_PaymentCapturedCarriesOrderID(t *testing.T) {
	g := newTestRazorpayGateway(t)

	payload := []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {
				"entity": {
					"id": "pay_123",
					"order_id": "order_rzp_456",
					"amount": 149900,
					"currency": "EUR",
					"notes": {"order_id": "7f9c24e8-3b12-4b8f-9d6a-ad1f00e5a1c0"}
				}
			}
		}
	}`)

	event, err := g.VerifyWebhook(payload, signRazorpayPayload(payload))
	require.NoError(t, err)
	assert.Equal(t, WebhookPaymentSucceeded, event.EventType)
	assert.Equal(t, "order_rzp_456", event.PaymentIntentID)
	assert.Equal(t, "7f9c24e8-3b12-4b8f-9d6a-ad1f00e5a1c0", event.OrderID)
	assert.Equal(t, 1499.00, event.Amount)
}

func TestVerifyWebhook_RefundCarriesOrderID(t *testing.T) {
	g := newTestRazorpayGateway(t)

	payload := []byte(`{
		"event": "refund.processed",
		"payload": {
			"refund": {
				"entity": {
					"id": "rfnd_789",
					"payment_id": "pay_123",
					"amount": 50000,
					"currency": "EUR",
					"notes": {"order_id": "7f9c24e8-3b12-4b8f-9d6a-ad1f00e5a1c0", "reason": "damaged on arrival"}
				}
			}
		}
	}`)

	event, err := g.VerifyWebhook(payload, signRazorpayPayload(payload))
	require.NoError(t, err)
	assert.Equal(t, WebhookRefundSucceeded, event.EventType)
	// The refund webhook correlates through the order id in the notes, not
	// only the provider payment id
	assert.Equal(t, "7f9c24e8-3b12-4b8f-9d6a-ad1f00e5a1c0", event.OrderID)
	assert.Equal(t, "pay_123", event.PaymentIntentID)
	assert.Equal(t, 500.00, event.Amount)
}

func TestVerifyWebhook_UnknownEvent(t *testing.T) {
	g := newTestRazorpayGateway(t)

	payload := []byte(`{"event":"subscription.activated"}`)
	event, err := g.VerifyWebhook(payload, signRazorpayPayload(payload))
	require.NoError(t, err)
	assert.Equal(t, WebhookUnknown, event.EventType)
}
