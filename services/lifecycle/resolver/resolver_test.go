package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/greenbasket/engine/services/lifecycle/db/model"
)

type fakeAddressReader struct {
	byID      map[uuid.UUID]*model.Address
	defaults  map[uuid.UUID]*model.Address
	first     map[uuid.UUID]*model.Address
	failReads bool
}

func (f *fakeAddressReader) GetAddress(_ context.Context, id uuid.UUID) (*model.Address, error) {
	if f.failReads {
		return nil, errors.New("storage down")
	}
	return f.byID[id], nil
}

func (f *fakeAddressReader) GetDefaultAddress(_ context.Context, userID uuid.UUID) (*model.Address, error) {
	if f.failReads {
		return nil, errors.New("storage down")
	}
	return f.defaults[userID], nil
}

func (f *fakeAddressReader) GetFirstAddress(_ context.Context, userID uuid.UUID) (*model.Address, error) {
	if f.failReads {
		return nil, errors.New("storage down")
	}
	return f.first[userID], nil
}

func newFakeReader() *fakeAddressReader {
	return &fakeAddressReader{
		byID:     map[uuid.UUID]*model.Address{},
		defaults: map[uuid.UUID]*model.Address{},
		first:    map[uuid.UUID]*model.Address{},
	}
}

func TestResolveExplicitAddressWins(t *testing.T) {
	userID := uuid.New()
	addrID := uuid.New()
	reader := newFakeReader()
	reader.byID[addrID] = &model.Address{ID: addrID, UserID: userID, Street: "1 Main St"}
	reader.defaults[userID] = &model.Address{ID: uuid.New(), UserID: userID, Street: "2 Default Ave", IsDefault: true}

	r := New(zap.NewNop(), reader)
	addr, err := r.Resolve(context.Background(), model.Subscription{
		ID: uuid.New(), UserID: userID, DeliveryAddressID: &addrID,
	})
	require.NoError(t, err)
	assert.Equal(t, addrID, addr.ID)
}

func TestResolveFallsBackToDefault(t *testing.T) {
	userID := uuid.New()
	deletedID := uuid.New()
	defaultAddr := &model.Address{ID: uuid.New(), UserID: userID, Street: "2 Default Ave", IsDefault: true}
	reader := newFakeReader()
	reader.defaults[userID] = defaultAddr
	reader.first[userID] = &model.Address{ID: uuid.New(), UserID: userID, Street: "3 Oldest Rd"}

	r := New(zap.NewNop(), reader)
	addr, err := r.Resolve(context.Background(), model.Subscription{
		ID: uuid.New(), UserID: userID, DeliveryAddressID: &deletedID,
	})
	require.NoError(t, err)
	assert.Equal(t, defaultAddr.ID, addr.ID)
}

func TestResolveFallsBackToFirstCreated(t *testing.T) {
	userID := uuid.New()
	firstAddr := &model.Address{ID: uuid.New(), UserID: userID, Street: "3 Oldest Rd", CreatedAt: time.Now()}
	reader := newFakeReader()
	reader.first[userID] = firstAddr

	r := New(zap.NewNop(), reader)
	addr, err := r.Resolve(context.Background(), model.Subscription{ID: uuid.New(), UserID: userID})
	require.NoError(t, err)
	assert.Equal(t, firstAddr.ID, addr.ID)
}

func TestResolveNotFound(t *testing.T) {
	r := New(zap.NewNop(), newFakeReader())
	_, err := r.Resolve(context.Background(), model.Subscription{ID: uuid.New(), UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestResolvePropagatesStorageErrors(t *testing.T) {
	reader := newFakeReader()
	reader.failReads = true

	r := New(zap.NewNop(), reader)
	_, err := r.Resolve(context.Background(), model.Subscription{ID: uuid.New(), UserID: uuid.New()})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAddressNotFound)
}
