package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionOrderStatus_HappyPath(t *testing.T) {
	path := []OrderStatus{
		OrderStatusPlaced,
		OrderStatusConfirmed,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCompleted,
	}

	for i := 0; i < len(path)-1; i++ {
		assert.True(t, CanTransitionOrderStatus(path[i], path[i+1]),
			"expected %s -> %s to be valid", path[i], path[i+1])
	}
}

func TestCanTransitionOrderStatus_SkipProcessing(t *testing.T) {
	assert.True(t, CanTransitionOrderStatus(OrderStatusConfirmed, OrderStatusShipped))
}

func TestCanTransitionOrderStatus_Cancellation(t *testing.T) {
	cancellable := []OrderStatus{
		OrderStatusPlaced,
		OrderStatusConfirmed,
		OrderStatusProcessing,
		OrderStatusShipped,
	}
	for _, from := range cancellable {
		assert.True(t, CanTransitionOrderStatus(from, OrderStatusCancelled),
			"expected %s to be cancellable", from)
	}

	// Delivered orders complete; they can no longer be cancelled
	assert.False(t, CanTransitionOrderStatus(OrderStatusDelivered, OrderStatusCancelled))
}

func TestCanTransitionOrderStatus_TerminalStates(t *testing.T) {
	all := []OrderStatus{
		OrderStatusPlaced,
		OrderStatusConfirmed,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCompleted,
		OrderStatusCancelled,
	}
	for _, to := range all {
		assert.False(t, CanTransitionOrderStatus(OrderStatusCompleted, to))
		assert.False(t, CanTransitionOrderStatus(OrderStatusCancelled, to))
	}
}

func TestCanTransitionOrderStatus_NoBackwardMoves(t *testing.T) {
	assert.False(t, CanTransitionOrderStatus(OrderStatusShipped, OrderStatusConfirmed))
	assert.False(t, CanTransitionOrderStatus(OrderStatusDelivered, OrderStatusProcessing))
	assert.False(t, CanTransitionOrderStatus(OrderStatusPlaced, OrderStatusShipped))
}

func TestValidateOrderStatusTransition(t *testing.T) {
	assert.NoError(t, ValidateOrderStatusTransition(OrderStatusPlaced, OrderStatusConfirmed))

	err := ValidateOrderStatusTransition(OrderStatusCompleted, OrderStatusCancelled)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid order status transition")
}

func TestCanTransitionPaymentStatus(t *testing.T) {
	tests := []struct {
		name  string
		from  PaymentStatus
		to    PaymentStatus
		valid bool
	}{
		{"pending to paid", PaymentStatusPending, PaymentStatusPaid, true},
		{"pending to failed", PaymentStatusPending, PaymentStatusFailed, true},
		{"failed retries to pending", PaymentStatusFailed, PaymentStatusPending, true},
		{"paid to partial refund", PaymentStatusPaid, PaymentStatusPartiallyRefunded, true},
		{"paid to full refund", PaymentStatusPaid, PaymentStatusRefunded, true},
		{"partial to full refund", PaymentStatusPartiallyRefunded, PaymentStatusRefunded, true},
		{"refunded is terminal", PaymentStatusRefunded, PaymentStatusPending, false},
		{"pending cannot refund", PaymentStatusPending, PaymentStatusRefunded, false},
		{"paid cannot fail", PaymentStatusPaid, PaymentStatusFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, CanTransitionPaymentStatus(tt.from, tt.to))
		})
	}
}

func TestGetNextValidOrderStatuses(t *testing.T) {
	next := GetNextValidOrderStatuses(OrderStatusConfirmed)
	assert.ElementsMatch(t, []OrderStatus{
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusCancelled,
	}, next)

	assert.Empty(t, GetNextValidOrderStatuses(OrderStatusCompleted))
}
