// Package resolver picks the effective shipping address for a
// subscription-generated order.
package resolver

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/greenbasket/engine/services/lifecycle/db/model"
)

// ErrAddressNotFound means the user has no usable address at all. The caller
// must defer generation without advancing the due date.
var ErrAddressNotFound = errors.New("no delivery address found")

type AddressReader interface {
	GetAddress(ctx context.Context, id uuid.UUID) (*model.Address, error)
	GetDefaultAddress(ctx context.Context, userID uuid.UUID) (*model.Address, error)
	GetFirstAddress(ctx context.Context, userID uuid.UUID) (*model.Address, error)
}

type Resolver struct {
	logger    *zap.Logger
	addresses AddressReader
}

func New(logger *zap.Logger, addresses AddressReader) *Resolver {
	return &Resolver{
		logger:    logger.Named("resolver"),
		addresses: addresses,
	}
}

// Resolve walks the fallback chain, first match wins:
// the subscription's explicit address if it still exists, then the user's
// default address, then the user's oldest address, then ErrAddressNotFound.
// Read-only; never mutates anything.
func (r *Resolver) Resolve(ctx context.Context, sub model.Subscription) (*model.Address, error) {
	if sub.DeliveryAddressID != nil {
		addr, err := r.addresses.GetAddress(ctx, *sub.DeliveryAddressID)
		if err != nil {
			return nil, err
		}
		if addr != nil {
			return addr, nil
		}
		r.logger.Info("subscription address no longer exists, falling back",
			zap.String("subscriptionID", sub.ID.String()),
			zap.String("addressID", sub.DeliveryAddressID.String()))
	}

	addr, err := r.addresses.GetDefaultAddress(ctx, sub.UserID)
	if err != nil {
		return nil, err
	}
	if addr != nil {
		return addr, nil
	}

	addr, err = r.addresses.GetFirstAddress(ctx, sub.UserID)
	if err != nil {
		return nil, err
	}
	if addr != nil {
		return addr, nil
	}

	return nil, ErrAddressNotFound
}
