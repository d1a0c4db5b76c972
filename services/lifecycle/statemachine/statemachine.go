// Package statemachine decides order status transitions from elapsed time.
package statemachine

import (
	"time"

	"github.com/greenbasket/engine/services/lifecycle/db/model"
)

// Thresholds are the dwell times before an order moves to the next status.
type Thresholds struct {
	PendingToProcessing time.Duration
	ProcessingToShipped time.Duration
	ShippedToDelivered  time.Duration
}

// Min returns the smallest dwell threshold, the cutoff below which no order
// can possibly be due for a transition.
func (t Thresholds) Min() time.Duration {
	min := t.PendingToProcessing
	if t.ProcessingToShipped < min {
		min = t.ProcessingToShipped
	}
	if t.ShippedToDelivered < min {
		min = t.ShippedToDelivered
	}
	return min
}

// Next maps the current status and the time elapsed since the last
// transition to the next status. A single call advances at most one state;
// an order far past several thresholds catches up one state per tick.
// Terminal and unknown statuses never change. Cancellation is not produced
// here, only by an explicit external call.
func Next(status model.OrderStatus, elapsed time.Duration, th Thresholds) (model.OrderStatus, bool) {
	switch status {
	case model.OrderStatusPending:
		if elapsed >= th.PendingToProcessing {
			return model.OrderStatusProcessing, true
		}
	case model.OrderStatusProcessing:
		if elapsed >= th.ProcessingToShipped {
			return model.OrderStatusShipped, true
		}
	case model.OrderStatusShipped:
		if elapsed >= th.ShippedToDelivered {
			return model.OrderStatusDelivered, true
		}
	}
	return status, false
}
