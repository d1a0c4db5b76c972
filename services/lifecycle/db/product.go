package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenbasket/engine/services/lifecycle/db/model"
)

// GetActiveProduct returns nil when the product is missing or retired, which
// the generator treats as a dropped line item.
func (db Database) GetActiveProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	tx := db.ORM.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&product)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return &product, nil
}
