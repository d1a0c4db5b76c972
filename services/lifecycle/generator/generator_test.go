package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/greenbasket/engine/services/lifecycle/db/model"
)

type orderKey struct {
	sub uuid.UUID
	due time.Time
}

type fakeStore struct {
	products map[uuid.UUID]*model.Product
	orders   map[orderKey]*model.Order
	inserts  int
	// failFirstInsert simulates losing the insert race to another tick.
	failFirstInsert bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: map[uuid.UUID]*model.Product{},
		orders:   map[orderKey]*model.Order{},
	}
}

func (f *fakeStore) GetActiveProduct(_ context.Context, id uuid.UUID) (*model.Product, error) {
	return f.products[id], nil
}

func (f *fakeStore) CreateOrder(_ context.Context, order *model.Order) error {
	key := orderKey{*order.SourceSubscriptionID, *order.DueDate}
	if _, ok := f.orders[key]; ok {
		return errors.New("duplicate key value violates unique constraint")
	}
	if f.failFirstInsert {
		f.failFirstInsert = false
		f.orders[key] = &model.Order{ID: uuid.New(), SourceSubscriptionID: order.SourceSubscriptionID, DueDate: order.DueDate}
		return errors.New("duplicate key value violates unique constraint")
	}
	f.inserts++
	f.orders[key] = order
	return nil
}

func (f *fakeStore) GetOrderBySubscriptionAndDueDate(_ context.Context, subID uuid.UUID, due time.Time) (*model.Order, error) {
	return f.orders[orderKey{subID, due}], nil
}

func (f *fakeStore) addProduct(name string, price string) uuid.UUID {
	id := uuid.New()
	p, _ := decimal.NewFromString(price)
	f.products[id] = &model.Product{ID: id, Name: name, Price: p, Active: true}
	return id
}

func testSubscription(due time.Time, productIDs ...uuid.UUID) model.Subscription {
	sub := model.Subscription{
		ID:               uuid.New(),
		UserID:           uuid.New(),
		Frequency:        model.FrequencyWeekly,
		Status:           model.SubscriptionStatusActive,
		NextDeliveryDate: due,
	}
	for _, pid := range productIDs {
		sub.Items = append(sub.Items, model.SubscriptionItem{
			ID: uuid.New(), SubscriptionID: sub.ID, ProductID: pid, Quantity: 2,
		})
	}
	return sub
}

var testAddr = model.Address{ID: uuid.New(), Street: "1 Main St", City: "Springfield", Zip: "12345"}

func TestGenerateSnapshotsPricesAndTotal(t *testing.T) {
	store := newFakeStore()
	apples := store.addProduct("apples", "3.50")
	milk := store.addProduct("milk", "1.25")
	due := time.Date(2024, time.June, 3, 8, 0, 0, 0, time.UTC)
	sub := testSubscription(due, apples, milk)

	g := New(zap.NewNop(), store, store)
	order, created, err := g.Generate(context.Background(), sub, testAddr)
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, order.Items, 2)
	// 2*3.50 + 2*1.25
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("9.50")), "total %s", order.TotalAmount)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, sub.ID, *order.SourceSubscriptionID)
	assert.True(t, order.DueDate.Equal(due))
	assert.Equal(t, "1 Main St", order.ShipStreet)
	require.NotNil(t, order.StatusUpdatedAt)
}

func TestGenerateDropsDeletedProducts(t *testing.T) {
	store := newFakeStore()
	apples := store.addProduct("apples", "3.50")
	gone := uuid.New()
	bread := store.addProduct("bread", "2.00")
	due := time.Date(2024, time.June, 3, 8, 0, 0, 0, time.UTC)
	sub := testSubscription(due, apples, gone, bread)

	g := New(zap.NewNop(), store, store)
	order, created, err := g.Generate(context.Background(), sub, testAddr)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, order.Items, 2)
}

func TestGenerateAbortsOnEmptyTemplate(t *testing.T) {
	store := newFakeStore()
	sub := testSubscription(time.Now(), uuid.New(), uuid.New())

	g := New(zap.NewNop(), store, store)
	_, _, err := g.Generate(context.Background(), sub, testAddr)
	assert.ErrorIs(t, err, ErrEmptyTemplate)
	assert.Zero(t, store.inserts)
}

func TestGenerateIsIdempotent(t *testing.T) {
	store := newFakeStore()
	apples := store.addProduct("apples", "3.50")
	due := time.Date(2024, time.June, 3, 8, 0, 0, 0, time.UTC)
	sub := testSubscription(due, apples)

	g := New(zap.NewNop(), store, store)
	first, created, err := g.Generate(context.Background(), sub, testAddr)
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := g.Generate(context.Background(), sub, testAddr)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, store.inserts)
}

func TestGenerateLosingInsertRaceIsSuccess(t *testing.T) {
	store := newFakeStore()
	apples := store.addProduct("apples", "3.50")
	store.failFirstInsert = true
	sub := testSubscription(time.Date(2024, time.June, 3, 8, 0, 0, 0, time.UTC), apples)

	g := New(zap.NewNop(), store, store)
	order, created, err := g.Generate(context.Background(), sub, testAddr)
	require.NoError(t, err)
	assert.False(t, created)
	require.NotNil(t, order)
}
