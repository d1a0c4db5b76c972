package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	VariantID *uuid.UUID      `json:"variant_id,omitempty"`
	Name      string          `json:"name"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type ShippingAddress struct {
	Street string `json:"street"`
	City   string `json:"city"`
	Zip    string `json:"zip"`
}

type Order struct {
	ID                   uuid.UUID       `json:"id"`
	Status               string          `json:"status"`
	Items                []OrderItem     `json:"items"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	ShippingAddress      ShippingAddress `json:"shipping_address"`
	SourceSubscriptionID *uuid.UUID      `json:"source_subscription_id,omitempty"`
	DueDate              *time.Time      `json:"due_date,omitempty"`
	StatusUpdatedAt      *time.Time      `json:"status_updated_at,omitempty"`
	Flagged              bool            `json:"flagged"`
	CreatedAt            time.Time       `json:"created_at"`
}
