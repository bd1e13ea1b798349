package models

import "fmt"

// ValidOrderTransitions defines valid state transitions for OrderStatus.
// Flow: PLACED → CONFIRMED → PROCESSING → SHIPPED → DELIVERED → COMPLETED.
// CANCELLED can be reached from any non-terminal state.
var ValidOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:     {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusShipped, OrderStatusCancelled}, // Can skip PROCESSING
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {OrderStatusCompleted},
	OrderStatusCompleted:  {}, // Terminal state
	OrderStatusCancelled:  {}, // Terminal state
}

// ValidPaymentTransitions defines valid state transitions for PaymentStatus
var ValidPaymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:           {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusPaid:              {PaymentStatusPartiallyRefunded, PaymentStatusRefunded},
	PaymentStatusFailed:            {PaymentStatusPending}, // Allow retry
	PaymentStatusPartiallyRefunded: {PaymentStatusRefunded},
	PaymentStatusRefunded:          {}, // Terminal state
}

// CanTransitionOrderStatus checks if a transition between order statuses is valid
func CanTransitionOrderStatus(from, to OrderStatus) bool {
	validTransitions, exists := ValidOrderTransitions[from]
	if !exists {
		return false
	}
	for _, validTo := range validTransitions {
		if validTo == to {
			return true
		}
	}
	return false
}

// CanTransitionPaymentStatus checks if a transition between payment statuses is valid
func CanTransitionPaymentStatus(from, to PaymentStatus) bool {
	validTransitions, exists := ValidPaymentTransitions[from]
	if !exists {
		return false
	}
	for _, validTo := range validTransitions {
		if validTo == to {
			return true
		}
	}
	return false
}

// ValidateOrderStatusTransition returns an error if the transition is invalid
func ValidateOrderStatusTransition(from, to OrderStatus) error {
	if !CanTransitionOrderStatus(from, to) {
		return fmt.Errorf("invalid order status transition from %s to %s", from, to)
	}
	return nil
}

// ValidatePaymentStatusTransition returns an error if the transition is invalid
func ValidatePaymentStatusTransition(from, to PaymentStatus) error {
	if !CanTransitionPaymentStatus(from, to) {
		return fmt.Errorf("invalid payment status transition from %s to %s", from, to)
	}
	return nil
}

// GetNextValidOrderStatuses returns the list of valid next statuses for an order
func GetNextValidOrderStatuses(current OrderStatus) []OrderStatus {
	return ValidOrderTransitions[current]
}
