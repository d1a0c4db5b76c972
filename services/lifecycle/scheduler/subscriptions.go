package scheduler

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/greenbasket/engine/pkg/concurrency"
	"github.com/greenbasket/engine/services/lifecycle/db/model"
	"github.com/greenbasket/engine/services/lifecycle/duedate"
	"github.com/greenbasket/engine/services/lifecycle/generator"
	"github.com/greenbasket/engine/services/lifecycle/resolver"
)

// runSubscriptionCycle generates orders for subscriptions whose due date has
// arrived and advances their next delivery date.
func (s *LifecycleScheduler) runSubscriptionCycle(ctx context.Context) (processed, generated, failures int) {
	subs, err := s.store.ListDueSubscriptions(ctx, s.now())
	if err != nil {
		s.logger.Error("failed to list due subscriptions", zap.Error(err))
		SubscriptionsProcessedCount.WithLabelValues("list_failure").Inc()
		return 0, 0, 1
	}
	if len(subs) == 0 {
		return 0, 0, 0
	}

	type outcome struct {
		generated bool
		err       error
	}
	outcomes := make([]outcome, len(subs))

	wp := concurrency.NewWorkPool(s.conf.WorkerCount)
	for i := range subs {
		i := i
		wp.AddJob(func() error {
			entityCtx, cancel := s.entityCtx(ctx)
			defer cancel()
			didGenerate, err := s.processSubscription(entityCtx, subs[i])
			outcomes[i] = outcome{generated: didGenerate, err: err}
			return err
		})
	}
	wp.Run()

	for i := range subs {
		processed++
		if outcomes[i].err != nil {
			failures++
			SubscriptionsProcessedCount.WithLabelValues("failure").Inc()
			s.logger.Error("failed to process due subscription",
				zap.String("subscriptionID", subs[i].ID.String()),
				zap.Error(outcomes[i].err))
			continue
		}
		SubscriptionsProcessedCount.WithLabelValues("success").Inc()
		if outcomes[i].generated {
			generated++
			OrdersGeneratedCount.Inc()
		}
	}
	return processed, generated, failures
}

// processSubscription resolves the shipping address, generates the order for
// the current due date, then advances the due date anchored on the due date
// itself so slippage between ticks does not accumulate.
//
// On a resolution failure the due date is deliberately left untouched: the
// delivery is deferred, not dropped, and the subscription is flagged so the
// owner can fix their addresses.
func (s *LifecycleScheduler) processSubscription(ctx context.Context, sub model.Subscription) (bool, error) {
	addr, err := s.resolver.Resolve(ctx, sub)
	if err != nil {
		if errors.Is(err, resolver.ErrAddressNotFound) {
			ResolutionFailuresCount.Inc()
			if flagErr := s.store.FlagSubscription(ctx, sub.ID, "no delivery address on file"); flagErr != nil {
				return false, flagErr
			}
			return false, nil
		}
		return false, err
	}

	order, created, err := s.generator.Generate(ctx, sub, *addr)
	if err != nil {
		if errors.Is(err, generator.ErrEmptyTemplate) {
			if flagErr := s.store.FlagSubscription(ctx, sub.ID, "all template products are unavailable"); flagErr != nil {
				return false, flagErr
			}
			return false, nil
		}
		return false, err
	}

	// Anchor on the due date, not on wall clock.
	nextDue := duedate.Next(sub.Frequency, sub.NextDeliveryDate)
	ok, err := s.store.AdvanceNextDeliveryDate(ctx, sub.ID, sub.NextDeliveryDate, nextDue)
	if err != nil {
		return created, err
	}
	if !ok {
		// Another tick advanced it, or the user cancelled in the
		// interim. The generated order stands; the idempotency key
		// guarantees there is only one of it.
		s.logger.Info("due date already advanced, leaving as is",
			zap.String("subscriptionID", sub.ID.String()))
	}

	if created {
		if sub.Flagged {
			if err := s.store.ClearSubscriptionFlag(ctx, sub.ID); err != nil {
				s.logger.Error("failed to clear subscription flag", zap.Error(err))
			}
		}
		if s.publisher != nil {
			if err := s.publisher.PublishOrderGenerated(ctx, *order); err != nil {
				s.logger.Error("failed to publish generated order event",
					zap.String("orderID", order.ID.String()), zap.Error(err))
			}
		}
	}
	return created, nil
}
