package scheduler

import (
	"context"

	"go.uber.org/zap"

	"github.com/greenbasket/engine/pkg/concurrency"
	"github.com/greenbasket/engine/services/lifecycle/db/model"
	"github.com/greenbasket/engine/services/lifecycle/statemachine"
)

// runOrderCycle advances every order that has dwelled past its threshold.
// Errors are contained per order; one bad record never aborts the batch.
func (s *LifecycleScheduler) runOrderCycle(ctx context.Context) (advanced, failures int) {
	now := s.now()
	orders, err := s.store.ListAdvanceableOrders(ctx, now.Add(-s.thresholds.Min()))
	if err != nil {
		s.logger.Error("failed to list advanceable orders", zap.Error(err))
		OrdersAdvancedCount.WithLabelValues("list_failure").Inc()
		return 0, 1
	}
	if len(orders) == 0 {
		return 0, 0
	}

	var advancedCount, failureCount int64
	results := make([]bool, len(orders))
	errs := make([]error, len(orders))

	wp := concurrency.NewWorkPool(s.conf.WorkerCount)
	for i := range orders {
		i := i
		wp.AddJob(func() error {
			entityCtx, cancel := s.entityCtx(ctx)
			defer cancel()
			didAdvance, err := s.advanceOrder(entityCtx, orders[i])
			results[i] = didAdvance
			errs[i] = err
			return err
		})
	}
	wp.Run()

	for i := range orders {
		if errs[i] != nil {
			failureCount++
			OrdersAdvancedCount.WithLabelValues("failure").Inc()
			s.logger.Error("failed to advance order",
				zap.String("orderID", orders[i].ID.String()),
				zap.Error(errs[i]))
			continue
		}
		if results[i] {
			advancedCount++
			OrdersAdvancedCount.WithLabelValues("success").Inc()
		}
	}
	return int(advancedCount), int(failureCount)
}

// advanceOrder applies the state machine to one order and persists the
// transition with an optimistic write. A lost write race is retried once
// against a fresh read, then left for the next tick. Orders without a status
// timestamp are flagged for manual inspection and skipped.
func (s *LifecycleScheduler) advanceOrder(ctx context.Context, order model.Order) (bool, error) {
	if order.StatusUpdatedAt == nil {
		s.logger.Warn("order has no status timestamp, flagging",
			zap.String("orderID", order.ID.String()))
		return false, s.store.FlagOrder(ctx, order.ID, "missing status timestamp")
	}

	for attempt := 0; attempt < 2; attempt++ {
		now := s.now()
		next, changed := statemachine.Next(order.Status, now.Sub(*order.StatusUpdatedAt), s.thresholds)
		if !changed {
			return false, nil
		}

		ok, err := s.store.UpdateOrderStatus(ctx, order.ID, order.Status, order.Version, next, now)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}

		// Lost the race: either a concurrent tick already advanced the
		// order or the user cancelled it. Re-read and re-decide once.
		fresh, err := s.store.GetOrder(ctx, order.ID)
		if err != nil {
			return false, err
		}
		if fresh == nil || fresh.Status.IsTerminal() || fresh.StatusUpdatedAt == nil {
			return false, nil
		}
		order = *fresh
	}
	return false, nil
}
