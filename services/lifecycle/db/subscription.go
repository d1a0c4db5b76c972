package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenbasket/engine/services/lifecycle/db/model"
)

// ListDueSubscriptions returns active subscriptions whose next delivery is
// due at or before now.
func (db Database) ListDueSubscriptions(ctx context.Context, now time.Time) ([]model.Subscription, error) {
	var subs []model.Subscription
	tx := db.ORM.WithContext(ctx).Preload("Items").
		Where("status = ?", model.SubscriptionStatusActive).
		Where("next_delivery_date <= ?", now).
		Find(&subs)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return subs, nil
}

func (db Database) GetSubscription(ctx context.Context, id uuid.UUID) (*model.Subscription, error) {
	var sub model.Subscription
	tx := db.ORM.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&sub)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return &sub, nil
}

func (db Database) ListSubscriptionsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Subscription, error) {
	var subs []model.Subscription
	tx := db.ORM.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&subs)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return subs, nil
}

func (db Database) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	return db.ORM.WithContext(ctx).Create(sub).Error
}

// AdvanceNextDeliveryDate moves the due date forward, conditional on the
// previous value and active status, so two overlapping generation attempts
// cannot both advance it. Returns whether a row was updated.
func (db Database) AdvanceNextDeliveryDate(ctx context.Context, id uuid.UUID, from, to time.Time) (bool, error) {
	tx := db.ORM.WithContext(ctx).Model(&model.Subscription{}).
		Where("id = ? AND next_delivery_date = ? AND status = ?", id, from, model.SubscriptionStatusActive).
		Update("next_delivery_date", to)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// UpdateSubscriptionStatus flips between active/paused/cancelled,
// conditional on the current status.
func (db Database) UpdateSubscriptionStatus(ctx context.Context, id uuid.UUID, from, to model.SubscriptionStatus) (bool, error) {
	tx := db.ORM.WithContext(ctx).Model(&model.Subscription{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// FlagSubscription surfaces a generation problem (for example no usable
// address) to the owning user via the read API.
func (db Database) FlagSubscription(ctx context.Context, id uuid.UUID, reason string) error {
	return db.ORM.WithContext(ctx).Model(&model.Subscription{}).
		Where("id = ?", id).
		Updates(map[string]any{"flagged": true, "flag_reason": reason}).Error
}

// ClearSubscriptionFlag resets the flag after a successful generation.
func (db Database) ClearSubscriptionFlag(ctx context.Context, id uuid.UUID) error {
	return db.ORM.WithContext(ctx).Model(&model.Subscription{}).
		Where("id = ? AND flagged = ?", id, true).
		Updates(map[string]any{"flagged": false, "flag_reason": ""}).Error
}
