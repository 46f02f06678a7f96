package order

import (
	"github.com/kiwari-pos/stockroom/internal/apperr"
	"github.com/kiwari-pos/stockroom/internal/domain"
	"github.com/kiwari-pos/stockroom/internal/enum"
)

// allowedTransitions lists the status edits a client may request.
// completed is absent on purpose: only the server derives it from a receipt.
var allowedTransitions = map[string][]string{
	enum.OrderStatusOpen:    {enum.OrderStatusPending},
	enum.OrderStatusPending: {enum.OrderStatusOpen},
}

// ValidateTransition checks a client-requested status change. Any transition
// is refused once the order carries a receipt.
func ValidateTransition(current, next, receipt string) error {
	if receipt != "" {
		return apperr.Transition(current, next)
	}
	for _, s := range allowedTransitions[current] {
		if s == next {
			return nil
		}
	}
	return apperr.Transition(current, next)
}

// DeliveryDisabled reports whether the delivered toggle is locked: a completed
// order or one with a receipt has its accounting fixed.
func DeliveryDisabled(o domain.Order) bool {
	return o.Status == enum.OrderStatusCompleted || o.Receipt() != ""
}

// IsDelivered is the toggle position implied by the order status.
func IsDelivered(o domain.Order) bool {
	return o.Status == enum.OrderStatusPending || o.Status == enum.OrderStatusCompleted
}
