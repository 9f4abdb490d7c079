package services

import (
	"context"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/access"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/cache"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dishNames(dishes []models.Dish) []string {
	names := make([]string, 0, len(dishes))
	for _, d := range dishes {
		names = append(names, d.NameEn)
	}
	return names
}

func TestListDishesFilters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewDishService(db, cache.Nop{})

	createDish(t, db, "Mapo Tofu", "88.00")
	createDish(t, db, "Kung Pao Chicken", "120.00")
	spicy := createDish(t, db, "Boiled Fish", "210.00")
	require.NoError(t, db.Model(&spicy).Update("description_en", "Very SPICY broth").Error)
	hidden := createDish(t, db, "Seasonal Soup", "60.00")
	require.NoError(t, db.Model(&hidden).Update("is_available", false).Error)

	min := decimal.RequireFromString("100")
	max := decimal.RequireFromString("200")

	testCases := []struct {
		name   string
		filter models.DishFilter
		want   []string
	}{
		{name: "all available", filter: models.DishFilter{}, want: []string{"Mapo Tofu", "Kung Pao Chicken", "Boiled Fish"}},
		{name: "name is case insensitive", filter: models.DishFilter{Query: "tofu"}, want: []string{"Mapo Tofu"}},
		{name: "description matches", filter: models.DishFilter{Query: "spicy"}, want: []string{"Boiled Fish"}},
		{name: "chinese name matches", filter: models.DishFilter{Query: "chicken zh"}, want: []string{"Kung Pao Chicken"}},
		{name: "minimum price", filter: models.DishFilter{MinPrice: &min}, want: []string{"Kung Pao Chicken", "Boiled Fish"}},
		{name: "price range", filter: models.DishFilter{MinPrice: &min, MaxPrice: &max}, want: []string{"Kung Pao Chicken"}},
		{name: "unavailable is hidden", filter: models.DishFilter{Query: "soup"}, want: []string{}},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			dishes, err := svc.ListDishes(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, dishNames(dishes))
		})
	}

	all, err := svc.ListAllDishes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestCreateAndUpdateDish(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewDishService(db, cache.Nop{})

	_, err := svc.CreateDish(ctx, models.DishInput{Price: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, ErrInvalidDish)

	_, err = svc.CreateDish(ctx, models.DishInput{NameEn: "Dumplings", NameZh: "饺子", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrInvalidDish)

	_, err = svc.CreateDish(ctx, models.DishInput{NameEn: "Dumplings", Price: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, ErrInvalidDish, "chinese name is required")
	_, err = svc.CreateDish(ctx, models.DishInput{NameZh: "饺子", NameEn: "  ", Price: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, ErrInvalidDish, "english name is required")

	dish, err := svc.CreateDish(ctx, models.DishInput{NameEn: "Dumplings", NameZh: "饺子", Price: decimal.RequireFromString("45.5")})
	require.NoError(t, err)
	assert.NotZero(t, dish.ID)
	assert.True(t, dish.IsAvailable)

	off := false
	updated, err := svc.UpdateDish(ctx, dish.ID, models.DishInput{NameEn: "Pork Dumplings", NameZh: "猪肉饺子", Price: decimal.NewFromInt(50), IsAvailable: &off})
	require.NoError(t, err)
	assert.Equal(t, "Pork Dumplings", updated.NameEn)
	assert.False(t, updated.IsAvailable)

	_, err = svc.UpdateDish(ctx, dish.ID, models.DishInput{NameEn: "Pork Dumplings", Price: decimal.NewFromInt(50)})
	assert.ErrorIs(t, err, ErrInvalidDish)

	_, err = svc.UpdateDish(ctx, 999, models.DishInput{NameEn: "Ghost", NameZh: "鬼", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrDishNotFound)

	_, err = svc.GetDish(ctx, 999)
	assert.ErrorIs(t, err, ErrDishNotFound)
}

func TestDeleteDish(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewDishService(db, cache.Nop{})
	customer := createUser(t, db, "eve@restaurant.local", access.RoleCustomer)

	ordered := createDish(t, db, "Peking Duck", "300.00")
	spare := createDish(t, db, "Spring Rolls", "30.00")

	order := models.Order{ConsumerID: customer.UserID, State: models.OrderUnfinished, TotalPrice: ordered.Price}
	require.NoError(t, db.Create(&order).Error)
	require.NoError(t, db.Create(&models.OrderItem{OrderID: order.ID, DishID: ordered.ID, Quantity: 1, UnitPrice: ordered.Price}).Error)

	assert.ErrorIs(t, svc.DeleteDish(ctx, ordered.ID), ErrDishInUse)
	_, err := svc.GetDish(ctx, ordered.ID)
	assert.NoError(t, err, "a referenced dish survives")

	require.NoError(t, svc.DeleteDish(ctx, spare.ID))
	_, err = svc.GetDish(ctx, spare.ID)
	assert.ErrorIs(t, err, ErrDishNotFound)

	assert.ErrorIs(t, svc.DeleteDish(ctx, spare.ID), ErrDishNotFound)
}

func TestDishCacheIsInvalidatedOnUpdate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	rc, mr := setupTestCache(t)
	svc := NewDishService(db, rc)

	dish := createDish(t, db, "Fried Rice", "40.00")

	dishes, err := svc.ListDishes(ctx, models.DishFilter{})
	require.NoError(t, err)
	require.Len(t, dishes, 1)
	got, err := svc.GetDish(ctx, dish.ID)
	require.NoError(t, err)
	assert.Equal(t, "40.00", got.Price.StringFixed(2))
	assert.True(t, mr.Exists(cache.DishDetailKey(dish.ID)))
	assert.True(t, mr.Exists(cache.DishListKey(models.DishFilter{})))

	_, err = svc.UpdateDish(ctx, dish.ID, models.DishInput{NameEn: "Egg Fried Rice", NameZh: "蛋炒饭", Price: decimal.RequireFromString("42.00")})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.DishDetailKey(dish.ID)))
	assert.False(t, mr.Exists(cache.DishListKey(models.DishFilter{})))

	dishes, err = svc.ListDishes(ctx, models.DishFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Egg Fried Rice"}, dishNames(dishes))
	got, err = svc.GetDish(ctx, dish.ID)
	require.NoError(t, err)
	assert.Equal(t, "42.00", got.Price.StringFixed(2))

	// Reads keep working when the cache backend goes away
	mr.Close()
	got, err = svc.GetDish(ctx, dish.ID)
	require.NoError(t, err)
	assert.Equal(t, "Egg Fried Rice", got.NameEn)
}

func TestDishRenameRefreshesReviewAndReportViews(t *testing.T) {
	rc, mr := setupTestCache(t)
	f := newOrderFixture(t, rc)
	ctx := context.Background()
	dishes := NewDishService(f.db, rc)
	reviews := NewReviewService(f.db, rc, f.publisher)
	reports := NewReportService(f.db, rc)
	reports.(*reportService).location = time.UTC

	duck := createDish(t, f.db, "Peking Duck", "150.00")
	f.fill(t, f.customer, duck.ID)
	order, err := f.orders.Checkout(ctx, f.customer, "")
	require.NoError(t, err)
	_, err = reviews.SubmitDishReviews(ctx, f.customer, order.ID, []models.DishReviewInput{
		{OrderItemID: order.Items[0].ID, Rating: ratingOf(5), Comment: "crispy"},
	})
	require.NoError(t, err)

	byName := models.ReviewFilter{Dish: "duck", Sort: models.SortTimeDesc}
	unfiltered := models.ReviewFilter{Sort: models.SortTimeDesc}
	found, err := reviews.ListDishReviews(ctx, byName)
	require.NoError(t, err)
	require.Len(t, found, 1)
	all, err := reviews.ListDishReviews(ctx, unfiltered)
	require.NoError(t, err)
	require.Len(t, all, 1)
	report, err := reports.MonthlyReport(ctx, 2024, 3)
	require.NoError(t, err)
	require.Len(t, report.Dishes, 1)
	assert.Equal(t, "Peking Duck", report.Dishes[0].NameEn)
	require.True(t, mr.Exists(cache.ReviewListKey(byName)))
	require.True(t, mr.Exists(cache.ReviewListKey(unfiltered)))
	require.True(t, mr.Exists(cache.MonthlyReportKey(2024, 3)))

	_, err = dishes.UpdateDish(ctx, duck.ID, models.DishInput{NameEn: "Roast Goose", NameZh: "烧鹅", Price: duck.Price})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.ReviewListKey(byName)))
	assert.False(t, mr.Exists(cache.ReviewListKey(unfiltered)))
	assert.False(t, mr.Exists(cache.MonthlyReportKey(2024, 3)))

	found, err = reviews.ListDishReviews(ctx, byName)
	require.NoError(t, err)
	assert.Empty(t, found, "the old name no longer matches")
	all, err = reviews.ListDishReviews(ctx, unfiltered)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].OrderItem)
	require.NotNil(t, all[0].OrderItem.Dish)
	assert.Equal(t, "Roast Goose", all[0].OrderItem.Dish.NameEn)
	report, err = reports.MonthlyReport(ctx, 2024, 3)
	require.NoError(t, err)
	require.Len(t, report.Dishes, 1)
	assert.Equal(t, "Roast Goose", report.Dishes[0].NameEn)
	assert.Equal(t, "烧鹅", report.Dishes[0].NameZh)
}
