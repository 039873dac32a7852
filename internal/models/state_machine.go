package models

import "fmt"

// ValidOrderTransitions defines valid state transitions for OrderStatus
// Flow: PENDING → PAYMENT_INITIATED → PAID → PROCESSING → SHIPPED → DELIVERED
// CANCELLED can be reached from any state before delivery; REFUNDED from any
// paid state, including after delivery or cancellation.
var ValidOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:          {OrderStatusPaymentInitiated, OrderStatusCancelled},
	OrderStatusPaymentInitiated: {OrderStatusPaid, OrderStatusPending, OrderStatusCancelled}, // Back to PENDING on gateway failure
	OrderStatusPaid:             {OrderStatusProcessing, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusProcessing:       {OrderStatusShipped, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusShipped:          {OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusDelivered:        {OrderStatusRefunded},
	OrderStatusCancelled:        {OrderStatusRefunded}, // Refund after cancelling a paid order
	OrderStatusRefunded:         {},                    // Terminal state
}

// CanTransitionOrderStatus checks if a transition from one order status to another is valid
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

// ValidateOrderStatusTransition returns an error if the transition is invalid
func ValidateOrderStatusTransition(from, to OrderStatus) error {
	if !CanTransitionOrderStatus(from, to) {
		return fmt.Errorf("invalid order status transition from %s to %s", from, to)
	}
	return nil
}

// GetNextValidOrderStatuses returns the list of valid next statuses for an order
func GetNextValidOrderStatuses(current OrderStatus) []OrderStatus {
	return ValidOrderTransitions[current]
}

// IsTerminalOrderStatus reports whether no further transitions exist
func IsTerminalOrderStatus(status OrderStatus) bool {
	return len(ValidOrderTransitions[status]) == 0
}

// DisplayName returns a human-readable label for an order status
func (s OrderStatus) DisplayName() string {
	switch s {
	case OrderStatusPending:
		return "Pending"
	case OrderStatusPaymentInitiated:
		return "Payment Initiated"
	case OrderStatusPaid:
		return "Paid"
	case OrderStatusProcessing:
		return "Processing"
	case OrderStatusShipped:
		return "Shipped"
	case OrderStatusDelivered:
		return "Delivered"
	case OrderStatusCancelled:
		return "Cancelled"
	case OrderStatusRefunded:
		return "Refunded"
	default:
		return string(s)
	}
}
