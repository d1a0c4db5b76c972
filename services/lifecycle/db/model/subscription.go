package model

import (
	"time"

	"github.com/google/uuid"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPaused    SubscriptionStatus = "paused"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

type Subscription struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`

	Items     []SubscriptionItem `gorm:"foreignKey:SubscriptionID"`
	Frequency Frequency          `gorm:"not null"`
	Status    SubscriptionStatus `gorm:"not null;index"`

	// DeliveryAddressID may reference an address the user has since
	// deleted; the resolver falls back in that case.
	DeliveryAddressID *uuid.UUID `gorm:"type:uuid"`

	// NextDeliveryDate only moves forward, and only through a conditional
	// update keyed on its previous value.
	NextDeliveryDate time.Time `gorm:"not null;index"`

	Flagged    bool `gorm:"not null;default:false"`
	FlagReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubscriptionItem is a template line. Prices are looked up at generation
// time, not stored here.
type SubscriptionItem struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SubscriptionID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID  `gorm:"type:uuid;not null"`
	VariantID      *uuid.UUID `gorm:"type:uuid"`
	Quantity       int32      `gorm:"not null"`
}
