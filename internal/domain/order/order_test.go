package order

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/example/ec-shop-assistant/internal/infrastructure/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMirror struct {
	mu     sync.Mutex
	orders []Order
	err    error
}

func (m *recordingMirror) SaveOrder(ctx context.Context, o Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, o)
	return m.err
}

func newTestOrderService(mirror Mirror) *Service {
	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := NewService(store.NewMemory[Order](Clone), mirror, log)
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc
}

func TestService_Place_Success(t *testing.T) {
	service := newTestOrderService(nil)
	ctx := context.Background()
	items := []Item{
		{ProductID: "p1", Name: "Black T-Shirt", Price: 299, Quantity: 5},
	}

	o, err := service.Place(ctx, "user-123", "cart-1", "Evening", items)

	require.NoError(t, err)
	assert.Regexp(t, `^order-[0-9a-f]{8}$`, o.ID)
	assert.Equal(t, StatusPlaced, o.Status)
	assert.Equal(t, PaymentPending, o.PaymentStatus)
	assert.Equal(t, DeliveryNotStarted, o.DeliveryStatus)
	assert.Equal(t, "user-123", o.UserID)
	assert.Equal(t, "cart-1", o.CartID)
	assert.Equal(t, "Evening", o.DeliverySlot)
	assert.Equal(t, 1495, o.TotalPrice)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), o.CreatedAt)

	stored, err := service.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o, stored)
}

func TestService_Place_TotalIsFrozen(t *testing.T) {
	service := newTestOrderService(nil)
	ctx := context.Background()
	items := []Item{{ProductID: "p1", Price: 299, Quantity: 5}}

	o, err := service.Place(ctx, "user-123", "cart-1", "", items)
	require.NoError(t, err)

	// A later price change on the caller's copy must not leak into the order.
	items[0].Price = 1

	stored, err := service.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 1495, stored.TotalPrice)
	assert.Equal(t, 299, stored.Items[0].Price)
	assert.Equal(t, DefaultDeliverySlot, stored.DeliverySlot)
}

func TestService_Place_RetriesTakenID(t *testing.T) {
	service := newTestOrderService(nil)
	ctx := context.Background()
	ids := []string{"order-aaaaaaaa", "order-aaaaaaaa", "order-bbbbbbbb"}
	service.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first, err := service.Place(ctx, "user-1", "cart-1", "", []Item{{ProductID: "p1", Price: 299, Quantity: 1}})
	require.NoError(t, err)
	second, err := service.Place(ctx, "user-2", "cart-2", "", []Item{{ProductID: "p4", Price: 799, Quantity: 2}})
	require.NoError(t, err)

	assert.Equal(t, "order-aaaaaaaa", first.ID)
	assert.Equal(t, "order-bbbbbbbb", second.ID)
	kept, err := service.Get(ctx, "order-aaaaaaaa")
	require.NoError(t, err)
	assert.Equal(t, "user-1", kept.UserID)
	assert.Equal(t, 299, kept.TotalPrice)
}

func TestService_Place_Empty(t *testing.T) {
	service := newTestOrderService(nil)

	_, err := service.Place(context.Background(), "user-123", "cart-1", "", nil)

	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestService_Place_MirrorsOrder(t *testing.T) {
	mirror := &recordingMirror{}
	service := newTestOrderService(mirror)

	o, err := service.Place(context.Background(), "user-123", "cart-1", "", []Item{{ProductID: "p1", Price: 10, Quantity: 1}})
	require.NoError(t, err)
	service.Wait()

	require.Len(t, mirror.orders, 1)
	assert.Equal(t, o.ID, mirror.orders[0].ID)
}

func TestService_Place_MirrorFailureIsNotFatal(t *testing.T) {
	mirror := &recordingMirror{err: errors.New("remote store down")}
	service := newTestOrderService(mirror)
	ctx := context.Background()

	o, err := service.Place(ctx, "user-123", "cart-1", "", []Item{{ProductID: "p1", Price: 10, Quantity: 2}})
	service.Wait()

	require.NoError(t, err)
	stored, err := service.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, stored.TotalPrice)
}

func TestService_Get_NotFound(t *testing.T) {
	service := newTestOrderService(nil)

	_, err := service.Get(context.Background(), "order-missing")

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestService_ListByUser(t *testing.T) {
	service := newTestOrderService(nil)
	ctx := context.Background()
	items := []Item{{ProductID: "p1", Price: 10, Quantity: 1}}
	first, _ := service.Place(ctx, "user-123", "cart-1", "", items)
	_, _ = service.Place(ctx, "user-456", "cart-2", "", items)
	second, _ := service.Place(ctx, "user-123", "cart-1", "", items)

	orders, err := service.ListByUser(ctx, "user-123")

	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, first.ID, orders[0].ID)
	assert.Equal(t, second.ID, orders[1].ID)
}

func TestMirrors_SaveOrder_JoinsErrors(t *testing.T) {
	ok := &recordingMirror{}
	failing := &recordingMirror{err: errors.New("kafka unavailable")}

	err := Mirrors{failing, ok}.SaveOrder(context.Background(), Order{ID: "order-1"})

	assert.ErrorContains(t, err, "kafka unavailable")
	assert.Len(t, ok.orders, 1)
	assert.Len(t, failing.orders, 1)
}
