package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is owned by the catalog service; the engine only reads the
// current price when generating an order.
type Product struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string

	Price  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Active bool            `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
