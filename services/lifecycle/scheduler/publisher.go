package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opengovern/og-util/pkg/jq"
	"go.uber.org/zap"

	"github.com/greenbasket/engine/services/lifecycle/db/model"
)

const (
	StreamName          = "lifecycle"
	TickSummaryTopic    = "lifecycle.tick"
	OrderGeneratedTopic = "lifecycle.order.generated"
)

// NatsPublisher emits lifecycle events onto JetStream for downstream
// consumers (notifications, analytics).
type NatsPublisher struct {
	logger *zap.Logger
	jq     *jq.JobQueue
}

func NewNatsPublisher(ctx context.Context, logger *zap.Logger, q *jq.JobQueue) (*NatsPublisher, error) {
	if err := q.Stream(ctx, StreamName, "order and subscription lifecycle events", []string{TickSummaryTopic, OrderGeneratedTopic}, 1000); err != nil {
		return nil, fmt.Errorf("setup lifecycle stream: %w", err)
	}
	return &NatsPublisher{
		logger: logger.Named("publisher"),
		jq:     q,
	}, nil
}

func (p *NatsPublisher) PublishTickSummary(ctx context.Context, summary TickSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	_, err = p.jq.Produce(ctx, TickSummaryTopic, payload, fmt.Sprintf("tick-%d", summary.StartedAt.UnixNano()))
	return err
}

type orderGeneratedEvent struct {
	OrderID        string `json:"order_id"`
	UserID         string `json:"user_id"`
	SubscriptionID string `json:"subscription_id"`
	TotalAmount    string `json:"total_amount"`
	DueDate        string `json:"due_date"`
}

func (p *NatsPublisher) PublishOrderGenerated(ctx context.Context, order model.Order) error {
	event := orderGeneratedEvent{
		OrderID:     order.ID.String(),
		UserID:      order.UserID.String(),
		TotalAmount: order.TotalAmount.String(),
	}
	if order.SourceSubscriptionID != nil {
		event.SubscriptionID = order.SourceSubscriptionID.String()
	}
	if order.DueDate != nil {
		event.DueDate = order.DueDate.Format(time.RFC3339)
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.jq.Produce(ctx, OrderGeneratedTopic, payload, fmt.Sprintf("order-generated-%s", order.ID))
	return err
}
