package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var OrdersAdvancedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "greenbasket_lifecycle_orders_advanced_total",
	Help: "Count of order status transitions attempted by the scheduler",
}, []string{"status"})

var SubscriptionsProcessedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "greenbasket_lifecycle_subscriptions_processed_total",
	Help: "Count of due subscriptions processed by the scheduler",
}, []string{"status"})

var OrdersGeneratedCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "greenbasket_lifecycle_orders_generated_total",
	Help: "Count of orders materialized from subscriptions",
})

var ResolutionFailuresCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "greenbasket_lifecycle_address_resolution_failures_total",
	Help: "Count of subscriptions deferred because no delivery address resolved",
})

var TicksSkippedCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "greenbasket_lifecycle_ticks_skipped_total",
	Help: "Count of ticks skipped because the previous tick was still running",
})
