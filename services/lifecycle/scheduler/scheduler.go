// Package scheduler drives the order and subscription lifecycle on a
// periodic tick.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/opengovern/og-util/pkg/ticker"
	"go.uber.org/zap"

	"github.com/greenbasket/engine/services/lifecycle/config"
	"github.com/greenbasket/engine/services/lifecycle/db/model"
	"github.com/greenbasket/engine/services/lifecycle/generator"
	"github.com/greenbasket/engine/services/lifecycle/resolver"
	"github.com/greenbasket/engine/services/lifecycle/statemachine"
)

// Store is the slice of the repository layer the scheduler writes through.
type Store interface {
	ListAdvanceableOrders(ctx context.Context, olderThan time.Time) ([]model.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, from model.OrderStatus, fromVersion int64, to model.OrderStatus, at time.Time) (bool, error)
	FlagOrder(ctx context.Context, id uuid.UUID, reason string) error

	ListDueSubscriptions(ctx context.Context, now time.Time) ([]model.Subscription, error)
	AdvanceNextDeliveryDate(ctx context.Context, id uuid.UUID, from, to time.Time) (bool, error)
	FlagSubscription(ctx context.Context, id uuid.UUID, reason string) error
	ClearSubscriptionFlag(ctx context.Context, id uuid.UUID) error
}

// EventPublisher receives the per-tick summary and generated-order events.
type EventPublisher interface {
	PublishTickSummary(ctx context.Context, summary TickSummary) error
	PublishOrderGenerated(ctx context.Context, order model.Order) error
}

type TickSummary struct {
	StartedAt              time.Time     `json:"started_at"`
	Duration               time.Duration `json:"duration"`
	OrdersAdvanced         int           `json:"orders_advanced"`
	SubscriptionsProcessed int           `json:"subscriptions_processed"`
	OrdersGenerated        int           `json:"orders_generated"`
	Failures               int           `json:"failures"`
}

type LifecycleScheduler struct {
	logger    *zap.Logger
	store     Store
	resolver  *resolver.Resolver
	generator *generator.Generator
	publisher EventPublisher

	conf       config.SchedulerConfig
	thresholds statemachine.Thresholds

	// ticking is the non-blocking overlap guard: a tick that fires while
	// the previous one is still running is skipped, not queued.
	ticking atomic.Bool

	now func() time.Time
}

func New(
	logger *zap.Logger,
	store Store,
	addressResolver *resolver.Resolver,
	orderGenerator *generator.Generator,
	publisher EventPublisher,
	conf config.SchedulerConfig,
) *LifecycleScheduler {
	return &LifecycleScheduler{
		logger:    logger.Named("scheduler"),
		store:     store,
		resolver:  addressResolver,
		generator: orderGenerator,
		publisher: publisher,
		conf:      conf,
		thresholds: statemachine.Thresholds{
			PendingToProcessing: conf.PendingToProcessing,
			ProcessingToShipped: conf.ProcessingToShipped,
			ShippedToDelivered:  conf.ShippedToDelivered,
		},
		now: time.Now,
	}
}

// Run blocks, ticking at the configured interval until ctx is cancelled. The
// first tick runs immediately.
func (s *LifecycleScheduler) Run(ctx context.Context) {
	s.logger.Info("lifecycle scheduler started",
		zap.Duration("interval", s.conf.TickInterval),
		zap.Int("workers", s.conf.WorkerCount))

	t := ticker.NewTicker(s.conf.TickInterval, time.Second)
	defer t.Stop()

	for {
		s.Tick(ctx)
		select {
		case <-ctx.Done():
			s.logger.Info("lifecycle scheduler stopped")
			return
		case <-t.C:
		}
	}
}

// Tick runs one scheduling pass: advance due orders, then generate orders
// for due subscriptions. Safe to call directly; overlapping invocations are
// dropped.
func (s *LifecycleScheduler) Tick(ctx context.Context) {
	if !s.ticking.CompareAndSwap(false, true) {
		TicksSkippedCount.Inc()
		s.logger.Warn("previous tick still running, skipping this one")
		return
	}
	defer s.ticking.Store(false)

	started := s.now()
	summary := TickSummary{StartedAt: started}

	advanced, failures := s.runOrderCycle(ctx)
	summary.OrdersAdvanced = advanced
	summary.Failures += failures

	processed, generated, failures := s.runSubscriptionCycle(ctx)
	summary.SubscriptionsProcessed = processed
	summary.OrdersGenerated = generated
	summary.Failures += failures

	summary.Duration = s.now().Sub(started)

	s.logger.Info("tick finished",
		zap.Int("ordersAdvanced", summary.OrdersAdvanced),
		zap.Int("subscriptionsProcessed", summary.SubscriptionsProcessed),
		zap.Int("ordersGenerated", summary.OrdersGenerated),
		zap.Int("failures", summary.Failures),
		zap.Duration("duration", summary.Duration))

	if s.publisher != nil {
		if err := s.publisher.PublishTickSummary(ctx, summary); err != nil {
			s.logger.Error("failed to publish tick summary", zap.Error(err))
		}
	}
}

// entityCtx bounds a single entity's work so one slow write cannot stall the
// rest of the batch.
func (s *LifecycleScheduler) entityCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.conf.EntityTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.conf.EntityTimeout)
}
