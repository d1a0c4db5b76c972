package statemachine

import (
	"testing"
	"time"

	"github.com/greenbasket/engine/services/lifecycle/db/model"
)

var testThresholds = Thresholds{
	PendingToProcessing: 15 * time.Minute,
	ProcessingToShipped: time.Hour,
	ShippedToDelivered:  4 * time.Hour,
}

func TestNextAdvancesAfterThreshold(t *testing.T) {
	next, changed := Next(model.OrderStatusPending, 15*time.Minute+time.Second, testThresholds)
	if !changed || next != model.OrderStatusProcessing {
		t.Errorf("expected processing, got %s (changed=%v)", next, changed)
	}
}

func TestNextHoldsBeforeThreshold(t *testing.T) {
	next, changed := Next(model.OrderStatusPending, 14*time.Minute, testThresholds)
	if changed || next != model.OrderStatusPending {
		t.Errorf("expected no change, got %s (changed=%v)", next, changed)
	}
}

func TestNextNeverSkipsStates(t *testing.T) {
	// Elapsed time covers every threshold at once; still only one hop.
	next, changed := Next(model.OrderStatusPending, 24*time.Hour, testThresholds)
	if !changed || next != model.OrderStatusProcessing {
		t.Errorf("expected single hop to processing, got %s", next)
	}
}

func TestNextFullPipeline(t *testing.T) {
	// One state per invocation, pending through delivered.
	status := model.OrderStatusPending
	expected := []model.OrderStatus{
		model.OrderStatusProcessing,
		model.OrderStatusShipped,
		model.OrderStatusDelivered,
	}
	for _, want := range expected {
		next, changed := Next(status, 24*time.Hour, testThresholds)
		if !changed || next != want {
			t.Fatalf("expected %s, got %s (changed=%v)", want, next, changed)
		}
		status = next
	}
}

func TestNextTerminalStatesHold(t *testing.T) {
	for _, status := range []model.OrderStatus{model.OrderStatusDelivered, model.OrderStatusCancelled} {
		next, changed := Next(status, 100*time.Hour, testThresholds)
		if changed || next != status {
			t.Errorf("terminal %s must not change, got %s", status, next)
		}
	}
}

func TestNextUnknownStatusHolds(t *testing.T) {
	next, changed := Next(model.OrderStatus("refunded"), time.Hour, testThresholds)
	if changed || next != model.OrderStatus("refunded") {
		t.Errorf("unknown status must not change, got %s", next)
	}
}

func TestThresholdsMin(t *testing.T) {
	if got := testThresholds.Min(); got != 15*time.Minute {
		t.Errorf("expected 15m, got %s", got)
	}
}
