// Package generator materializes orders from subscription templates.
package generator

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/greenbasket/engine/services/lifecycle/db/model"
)

// ErrEmptyTemplate means every product referenced by the template is gone.
// The caller flags the subscription instead of creating an empty order.
var ErrEmptyTemplate = errors.New("subscription template has no purchasable items")

type PriceReader interface {
	GetActiveProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrderBySubscriptionAndDueDate(ctx context.Context, subscriptionID uuid.UUID, dueDate time.Time) (*model.Order, error)
}

type Generator struct {
	logger *zap.Logger
	prices PriceReader
	orders OrderStore
}

func New(logger *zap.Logger, prices PriceReader, orders OrderStore) *Generator {
	return &Generator{
		logger: logger.Named("generator"),
		prices: prices,
		orders: orders,
	}
}

// Generate builds and persists the order for the subscription's current due
// date. Unit prices are snapshotted at generation time; template lines whose
// product no longer exists are dropped and the rest proceed. The
// (subscription, due date) pair is the idempotency key: when an order for it
// already exists the call returns that order with created=false, so
// overlapping ticks cannot double-charge a delivery.
func (g *Generator) Generate(ctx context.Context, sub model.Subscription, addr model.Address) (*model.Order, bool, error) {
	dueDate := sub.NextDeliveryDate

	existing, err := g.orders.GetOrderBySubscriptionAndDueDate(ctx, sub.ID, dueDate)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	orderID := uuid.New()
	var items []model.OrderItem
	total := decimal.Zero
	for _, line := range sub.Items {
		product, err := g.prices.GetActiveProduct(ctx, line.ProductID)
		if err != nil {
			return nil, false, err
		}
		if product == nil {
			g.logger.Warn("dropping template line, product no longer exists",
				zap.String("subscriptionID", sub.ID.String()),
				zap.String("productID", line.ProductID.String()))
			continue
		}
		item := model.OrderItem{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: product.ID,
			VariantID: line.VariantID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
		}
		items = append(items, item)
		total = total.Add(item.LineTotal())
	}
	if len(items) == 0 {
		return nil, false, ErrEmptyTemplate
	}

	now := time.Now()
	subID := sub.ID
	order := &model.Order{
		ID:                   orderID,
		UserID:               sub.UserID,
		Status:               model.OrderStatusPending,
		StatusUpdatedAt:      &now,
		Items:                items,
		TotalAmount:          total,
		ShipStreet:           addr.Street,
		ShipCity:             addr.City,
		ShipZip:              addr.Zip,
		SourceSubscriptionID: &subID,
		DueDate:              &dueDate,
	}

	if err := g.orders.CreateOrder(ctx, order); err != nil {
		// A concurrent tick may have won the insert between our lookup
		// and the write; the unique index on the idempotency key turns
		// that into an error here. Re-read before reporting failure.
		winner, lookupErr := g.orders.GetOrderBySubscriptionAndDueDate(ctx, sub.ID, dueDate)
		if lookupErr == nil && winner != nil {
			return winner, false, nil
		}
		return nil, false, err
	}
	return order, true, nil
}
