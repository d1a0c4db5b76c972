package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsTerminal reports whether no further automatic transition may occur.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type Order struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`

	Status OrderStatus `gorm:"not null;index"`
	// StatusUpdatedAt drives the state machine; a null value marks the
	// record as corrupt and excludes it from scheduling.
	StatusUpdatedAt *time.Time
	// Version guards status writes. Every transition, including external
	// cancellation, increments it.
	Version int64 `gorm:"not null;default:0"`

	Items       []OrderItem     `gorm:"foreignKey:OrderID"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null"`

	// Shipping address snapshot, copied at order time. Later edits or
	// deletes of the user's address must not show through.
	ShipStreet string
	ShipCity   string
	ShipZip    string

	// SourceSubscriptionID and DueDate together form the idempotency key
	// for generated orders; both are nil for ad-hoc checkout orders.
	SourceSubscriptionID *uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_orders_sub_due"`
	DueDate              *time.Time `gorm:"uniqueIndex:idx_orders_sub_due"`

	Flagged    bool `gorm:"not null;default:false"`
	FlagReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID  `gorm:"type:uuid;not null"`
	VariantID *uuid.UUID `gorm:"type:uuid"`

	Name      string
	Quantity  int32           `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

// LineTotal is the price snapshot times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt32(i.Quantity))
}
