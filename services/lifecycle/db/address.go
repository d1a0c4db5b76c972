package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenbasket/engine/services/lifecycle/db/model"
)

func (db Database) GetAddress(ctx context.Context, id uuid.UUID) (*model.Address, error) {
	var addr model.Address
	tx := db.ORM.WithContext(ctx).Where("id = ?", id).First(&addr)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return &addr, nil
}

func (db Database) GetDefaultAddress(ctx context.Context, userID uuid.UUID) (*model.Address, error) {
	var addr model.Address
	tx := db.ORM.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		Order("created_at asc").
		First(&addr)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return &addr, nil
}

// GetFirstAddress returns the user's oldest address, the deterministic last
// resort of the fallback chain.
func (db Database) GetFirstAddress(ctx context.Context, userID uuid.UUID) (*model.Address, error) {
	var addr model.Address
	tx := db.ORM.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		First(&addr)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return &addr, nil
}
