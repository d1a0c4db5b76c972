package api

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionItem struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
	Quantity  int32      `json:"quantity"`
}

type Subscription struct {
	ID                uuid.UUID          `json:"id"`
	Items             []SubscriptionItem `json:"items"`
	Frequency         string             `json:"frequency"`
	Status            string             `json:"status"`
	DeliveryAddressID *uuid.UUID         `json:"delivery_address_id,omitempty"`
	NextDeliveryDate  time.Time          `json:"next_delivery_date"`
	Flagged           bool               `json:"flagged"`
	FlagReason        string             `json:"flag_reason,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}

type CreateSubscriptionRequest struct {
	Items             []SubscriptionItem `json:"items" validate:"required,min=1,dive"`
	Frequency         string             `json:"frequency" validate:"required,oneof=daily weekly monthly"`
	DeliveryAddressID *uuid.UUID         `json:"delivery_address_id"`
}
