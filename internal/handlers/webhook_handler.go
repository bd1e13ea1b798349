package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/gateway"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/services"
)

// WebhookHandler receives payment provider callbacks. Signature
// verification happens against the raw request body before any parsing.
type WebhookHandler struct {
	orders   *services.OrderService
	gateways *gateway.Registry
	logger   *logrus.Entry
}

func NewWebhookHandler(orders *services.OrderService, gateways *gateway.Registry, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{
		orders:   orders,
		gateways: gateways,
		logger:   logger.WithField("component", "webhooks"),
	}
}

// HandleStripe processes Stripe webhook events
// @Summary Stripe webhook
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Router /webhooks/stripe [post]
func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	h.handle(c, "stripe", c.GetHeader("Stripe-Signature"))
}

// HandleRazorpay processes Razorpay webhook events
// @Summary Razorpay webhook
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Router /webhooks/razorpay [post]
func (h *WebhookHandler) HandleRazorpay(c *gin.Context) {
	h.handle(c, "razorpay", c.GetHeader("X-Razorpay-Signature"))
}

func (h *WebhookHandler) handle(c *gin.Context, gatewayName, signature string) {
	gw, err := h.gateways.Get(gatewayName)
	if err != nil {
		respondError(c, http.StatusNotFound, "GATEWAY_NOT_CONFIGURED", "Payment gateway is not configured")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "Failed to read request body")
		return
	}

	event, err := gw.VerifyWebhook(payload, signature)
	if err != nil {
		h.logger.WithError(err).WithField("gateway", gatewayName).Warn("Webhook signature verification failed")
		respondError(c, http.StatusBadRequest, "INVALID_SIGNATURE", "Webhook signature verification failed")
		return
	}

	if event.EventType == gateway.WebhookUnknown {
		// Unknown event types are acknowledged so the provider stops retrying
		c.JSON(http.StatusOK, gin.H{"received": true, "handled": false})
		return
	}

	if err := h.orders.HandleWebhook(event); err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"gateway":   gatewayName,
			"eventId":   event.EventID,
			"eventType": event.EventType,
		}).Error("Failed to apply webhook event")
		respondInternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true, "handled": true})
}
