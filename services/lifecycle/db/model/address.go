package model

import (
	"time"

	"github.com/google/uuid"
)

// Address is owned by the storefront's account service; the engine only
// reads it.
type Address struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`

	Street    string
	City      string
	Zip       string
	IsDefault bool `gorm:"not null;default:false"`

	CreatedAt time.Time
}
