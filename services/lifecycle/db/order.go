package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenbasket/engine/services/lifecycle/db/model"
)

// ListAdvanceableOrders returns non-terminal, unflagged orders whose last
// transition is older than the given cutoff. Orders with a null
// status_updated_at are returned too so the scheduler can flag them.
func (db Database) ListAdvanceableOrders(ctx context.Context, olderThan time.Time) ([]model.Order, error) {
	var orders []model.Order
	tx := db.ORM.WithContext(ctx).
		Where("status IN ?", []model.OrderStatus{
			model.OrderStatusPending,
			model.OrderStatusProcessing,
			model.OrderStatusShipped,
		}).
		Where("flagged = ?", false).
		Where("status_updated_at IS NULL OR status_updated_at <= ?", olderThan).
		Find(&orders)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return orders, nil
}

func (db Database) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	tx := db.ORM.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&order)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return &order, nil
}

func (db Database) ListOrdersByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error) {
	var orders []model.Order
	tx := db.ORM.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&orders)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return orders, nil
}

// ListOrdersBySubscription is the derived subscription history view.
func (db Database) ListOrdersBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	tx := db.ORM.WithContext(ctx).Preload("Items").
		Where("source_subscription_id = ?", subscriptionID).
		Order("created_at desc").
		Find(&orders)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return orders, nil
}

func (db Database) CreateOrder(ctx context.Context, order *model.Order) error {
	return db.ORM.WithContext(ctx).Create(order).Error
}

// GetOrderBySubscriptionAndDueDate looks up the idempotency key for
// generated orders.
func (db Database) GetOrderBySubscriptionAndDueDate(ctx context.Context, subscriptionID uuid.UUID, dueDate time.Time) (*model.Order, error) {
	var order model.Order
	tx := db.ORM.WithContext(ctx).Preload("Items").
		Where("source_subscription_id = ? AND due_date = ?", subscriptionID, dueDate).
		First(&order)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return &order, nil
}

// UpdateOrderStatus performs the optimistic transition write. The update is
// keyed on the status and version the caller read, so a concurrent writer
// (another tick, or an external cancellation) makes this a no-op. Returns
// whether a row was updated.
func (db Database) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from model.OrderStatus, fromVersion int64, to model.OrderStatus, at time.Time) (bool, error) {
	tx := db.ORM.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ? AND version = ?", id, from, fromVersion).
		Updates(map[string]any{
			"status":            to,
			"status_updated_at": at,
			"version":           gorm.Expr("version + 1"),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// CancelOrder is the external cancellation entrypoint. It only succeeds on
// non-terminal orders and bumps the version so in-flight scheduler writes
// lose the race.
func (db Database) CancelOrder(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	tx := db.ORM.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status IN ?", id, []model.OrderStatus{
			model.OrderStatusPending,
			model.OrderStatusProcessing,
			model.OrderStatusShipped,
		}).
		Updates(map[string]any{
			"status":            model.OrderStatusCancelled,
			"status_updated_at": at,
			"version":           gorm.Expr("version + 1"),
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// FlagOrder marks a record for manual inspection and removes it from
// scheduling.
func (db Database) FlagOrder(ctx context.Context, id uuid.UUID, reason string) error {
	return db.ORM.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{"flagged": true, "flag_reason": reason}).Error
}
