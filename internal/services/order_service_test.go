package services

import (
	"context"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/access"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/cache"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/cart"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/events"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderFixture struct {
	db        *gorm.DB
	carts     *cart.MemoryStore
	publisher *recordingPublisher
	orders    OrderService
	cartSvc   CartService
	customer  access.Principal
	staff     access.Principal
}

func newOrderFixture(t *testing.T, c cache.Cache) *orderFixture {
	db := setupTestDB(t)
	f := &orderFixture{
		db:        db,
		carts:     cart.NewMemoryStore(),
		publisher: &recordingPublisher{},
	}
	f.orders = NewOrderService(db, c, f.carts, f.publisher)
	f.orders.(*orderService).now = fixedClock(time.Date(2024, 3, 5, 12, 7, 0, 0, time.UTC))
	f.cartSvc = NewCartService(db, f.carts)
	f.customer = createUser(t, db, "alice@restaurant.local", access.RoleCustomer)
	f.staff = createUser(t, db, "bob@restaurant.local", access.RoleStaff)
	return f
}

func (f *orderFixture) fill(t *testing.T, p access.Principal, dishIDs ...uint) {
	for _, id := range dishIDs {
		_, err := f.cartSvc.Add(context.Background(), cart.SessionKey(p.UserID), id)
		require.NoError(t, err)
	}
}

func TestCheckout(t *testing.T) {
	f := newOrderFixture(t, cache.Nop{})
	ctx := context.Background()
	duck := createDish(t, f.db, "Peking Duck", "150.00")
	f.fill(t, f.customer, duck.ID, duck.ID)

	order, err := f.orders.Checkout(ctx, f.customer, "13:30")
	require.NoError(t, err)
	assert.Equal(t, "300.00", order.TotalPrice.StringFixed(2))
	assert.Equal(t, models.OrderUnfinished, order.State)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "150.00", order.Items[0].UnitPrice.StringFixed(2))
	require.NotNil(t, order.PickupTime)
	assert.Equal(t, "13:30:00", order.PickupTime.String())

	c, err := f.carts.Load(ctx, cart.SessionKey(f.customer.UserID))
	require.NoError(t, err)
	assert.True(t, c.IsEmpty(), "checkout empties the cart")

	var stored models.Order
	require.NoError(t, f.db.Preload("Items").First(&stored, order.ID).Error)
	assert.Equal(t, "300.00", stored.TotalPrice.StringFixed(2))
	assert.Len(t, stored.Items, 1)

	assert.Equal(t, []events.Type{events.OrderCreated}, f.publisher.types())
	assert.Equal(t, "300.00", f.publisher.events[0].TotalPrice)
}

func TestCheckoutIgnoresLaterPriceChanges(t *testing.T) {
	f := newOrderFixture(t, cache.Nop{})
	ctx := context.Background()
	dish := createDish(t, f.db, "Hot Pot", "100.00")
	f.fill(t, f.customer, dish.ID)

	order, err := f.orders.Checkout(ctx, f.customer, PickupNow)
	require.NoError(t, err)
	assert.Nil(t, order.PickupTime)

	require.NoError(t, f.db.Model(&dish).Update("price", "250.00").Error)
	got, err := f.orders.GetOrder(ctx, f.customer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "100.00", got.TotalPrice.StringFixed(2))
	assert.Equal(t, "100.00", got.Items[0].UnitPrice.StringFixed(2))
}

func TestCheckoutRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("empty cart", func(t *testing.T) {
		f := newOrderFixture(t, cache.Nop{})
		_, err := f.orders.Checkout(ctx, f.customer, "")
		assert.ErrorIs(t, err, ErrEmptyCart)
		var count int64
		f.db.Model(&models.Order{}).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("staff cannot place orders", func(t *testing.T) {
		f := newOrderFixture(t, cache.Nop{})
		_, err := f.orders.Checkout(ctx, f.staff, "")
		assert.ErrorIs(t, err, ErrNotPermitted)
	})

	t.Run("invalid pickup time", func(t *testing.T) {
		f := newOrderFixture(t, cache.Nop{})
		dish := createDish(t, f.db, "Noodles", "30.00")
		f.fill(t, f.customer, dish.ID)
		_, err := f.orders.Checkout(ctx, f.customer, "11:00")
		assert.ErrorIs(t, err, ErrInvalidPickupTime)

		c, err := f.carts.Load(ctx, cart.SessionKey(f.customer.UserID))
		require.NoError(t, err)
		assert.False(t, c.IsEmpty(), "a rejected checkout keeps the cart")
	})

	t.Run("deleted dish rolls back the order", func(t *testing.T) {
		f := newOrderFixture(t, cache.Nop{})
		kept := createDish(t, f.db, "Noodles", "30.00")
		gone := createDish(t, f.db, "Dumplings", "45.00")
		f.fill(t, f.customer, kept.ID, gone.ID)
		require.NoError(t, f.db.Delete(&models.Dish{}, gone.ID).Error)

		_, err := f.orders.Checkout(ctx, f.customer, "")
		assert.ErrorIs(t, err, ErrDishNotFound)

		var orders, items int64
		f.db.Model(&models.Order{}).Count(&orders)
		f.db.Model(&models.OrderItem{}).Count(&items)
		assert.Zero(t, orders)
		assert.Zero(t, items)
		assert.Empty(t, f.publisher.types())

		c, err := f.carts.Load(ctx, cart.SessionKey(f.customer.UserID))
		require.NoError(t, err)
		assert.Equal(t, 1, c.Quantity(gone.ID))
	})
}

func TestParsePickupTime(t *testing.T) {
	now := time.Date(2024, 3, 5, 12, 7, 30, 0, time.UTC)

	testCases := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "", want: ""},
		{raw: "now", want: ""},
		{raw: "NOW", want: ""},
		{raw: "12:07", want: "12:07:00"},
		{raw: "18:45", want: "18:45:00"},
		{raw: "18:45:30", want: "18:45:30"},
		{raw: "12:07:00", want: "12:07:00"},
		{raw: "12:06:59", wantErr: true},
		{raw: "18:45:61", wantErr: true},
		{raw: "12:06", wantErr: true},
		{raw: "25:00", wantErr: true},
		{raw: "noon", wantErr: true},
		{raw: "2024-03-05T13:00:00Z", wantErr: true},
	}

	for _, tt := range testCases {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParsePickupTime(tt.raw, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPickupTime)
				return
			}
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestPickupTimesAt(t *testing.T) {
	times := PickupTimesAt(time.Date(2024, 3, 5, 12, 7, 0, 0, time.UTC))
	require.Len(t, times, 33)
	assert.Equal(t, PickupNow, times[0])
	assert.Equal(t, "12:15", times[1])
	assert.Equal(t, "20:00", times[32])

	late := PickupTimesAt(time.Date(2024, 3, 5, 23, 20, 0, 0, time.UTC))
	assert.Equal(t, []string{PickupNow, "23:30", "23:45"}, late)

	onSlot := PickupTimesAt(time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, "09:15", onSlot[1])
}

func TestOrderVisibility(t *testing.T) {
	f := newOrderFixture(t, cache.Nop{})
	ctx := context.Background()
	dish := createDish(t, f.db, "Noodles", "30.00")
	f.fill(t, f.customer, dish.ID)
	order, err := f.orders.Checkout(ctx, f.customer, "")
	require.NoError(t, err)

	stranger := createUser(t, f.db, "mallory@restaurant.local", access.RoleCustomer)
	_, err = f.orders.GetOrder(ctx, stranger, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = f.orders.Status(ctx, stranger, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	got, err := f.orders.GetOrder(ctx, f.staff, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.NotNil(t, got.Items[0].Dish)
	assert.Equal(t, "Noodles", got.Items[0].Dish.NameEn)

	status, err := f.orders.Status(ctx, f.customer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Unfinished", status.StateDisplay)
	assert.Equal(t, "30.00", status.TotalPrice)

	_, err = f.orders.GetOrder(ctx, f.customer, 999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestHistoryAndCompletion(t *testing.T) {
	rc, _ := setupTestCache(t)
	f := newOrderFixture(t, rc)
	ctx := context.Background()
	dish := createDish(t, f.db, "Noodles", "30.00")

	history, err := f.orders.History(ctx, f.customer)
	require.NoError(t, err)
	assert.Empty(t, history)

	f.fill(t, f.customer, dish.ID)
	first, err := f.orders.Checkout(ctx, f.customer, "")
	require.NoError(t, err)

	f.orders.(*orderService).now = fixedClock(time.Date(2024, 3, 5, 12, 30, 0, 0, time.UTC))
	f.fill(t, f.customer, dish.ID)
	second, err := f.orders.Checkout(ctx, f.customer, "")
	require.NoError(t, err)

	history, err = f.orders.History(ctx, f.customer)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID, "newest order first")
	assert.Equal(t, first.ID, history[1].ID)

	completed, err := f.orders.CompleteOrder(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderFinished, completed.State)

	_, err = f.orders.CompleteOrder(ctx, first.ID)
	assert.ErrorIs(t, err, ErrOrderAlreadyFinished)
	_, err = f.orders.CompleteOrder(ctx, 999)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	history, err = f.orders.History(ctx, f.customer)
	require.NoError(t, err)
	assert.Equal(t, models.OrderFinished, history[1].State, "history reflects completion")

	unfinished, err := f.orders.ListOrders(ctx, string(models.OrderUnfinished))
	require.NoError(t, err)
	require.Len(t, unfinished, 1)
	assert.Equal(t, second.ID, unfinished[0].ID)

	all, err := f.orders.ListOrders(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.orders.ListOrders(ctx, "cancelled")
	assert.ErrorIs(t, err, ErrInvalidOrderState)

	assert.Equal(t, []events.Type{events.OrderCreated, events.OrderCreated, events.OrderFinished}, f.publisher.types())
}
