package services

import (
	"context"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/cache"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyReport(t *testing.T) {
	f := newOrderFixture(t, cache.Nop{})
	ctx := context.Background()
	reports := NewReportService(f.db, cache.Nop{})
	reports.(*reportService).location = time.UTC
	reviews := NewReviewService(f.db, cache.Nop{}, f.publisher)

	duck := createDish(t, f.db, "Peking Duck", "150.00")
	tofu := createDish(t, f.db, "Mapo Tofu", "88.00")

	f.orders.(*orderService).now = fixedClock(time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC))
	f.fill(t, f.customer, duck.ID, duck.ID, tofu.ID)
	march1, err := f.orders.Checkout(ctx, f.customer, "")
	require.NoError(t, err)

	f.orders.(*orderService).now = fixedClock(time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC))
	f.fill(t, f.customer, tofu.ID)
	march2, err := f.orders.Checkout(ctx, f.customer, "")
	require.NoError(t, err)

	f.orders.(*orderService).now = fixedClock(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	f.fill(t, f.customer, duck.ID)
	april, err := f.orders.Checkout(ctx, f.customer, "")
	require.NoError(t, err)

	_, err = f.orders.CompleteOrder(ctx, march1.ID)
	require.NoError(t, err)
	_, err = reviews.SubmitReview(ctx, f.customer, march1.ID, models.ReviewInput{Rating: ratingOf(5)})
	require.NoError(t, err)
	_, err = reviews.SubmitReview(ctx, f.customer, march2.ID, models.ReviewInput{Rating: ratingOf(2)})
	require.NoError(t, err)
	_, err = reviews.SubmitReview(ctx, f.customer, april.ID, models.ReviewInput{Rating: ratingOf(0)})
	require.NoError(t, err)

	report, err := reports.MonthlyReport(ctx, 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, report.OrderCount)
	assert.Equal(t, 1, report.FinishedCount)
	assert.Equal(t, "476.00", report.Revenue.StringFixed(2))
	assert.Equal(t, 2, report.ReviewCount)
	require.NotNil(t, report.AverageRating)
	assert.Equal(t, "3.50", report.AverageRating.StringFixed(2))

	require.Len(t, report.Dishes, 2)
	assert.Equal(t, duck.ID, report.Dishes[0].DishID, "dishes are ranked by revenue")
	assert.Equal(t, 2, report.Dishes[0].Quantity)
	assert.Equal(t, "300.00", report.Dishes[0].Revenue.StringFixed(2))
	assert.Equal(t, "Mapo Tofu", report.Dishes[1].NameEn)
	assert.Equal(t, 2, report.Dishes[1].Quantity)
	assert.Equal(t, "176.00", report.Dishes[1].Revenue.StringFixed(2))

	empty, err := reports.MonthlyReport(ctx, 2023, 12)
	require.NoError(t, err)
	assert.Zero(t, empty.OrderCount)
	assert.Nil(t, empty.AverageRating)
	assert.Empty(t, empty.Dishes)
}

func TestMonthlyReportRejectsInvalidPeriods(t *testing.T) {
	reports := NewReportService(setupTestDB(t), cache.Nop{})
	for _, period := range [][2]int{{2024, 0}, {2024, 13}, {1999, 6}, {10000, 1}} {
		_, err := reports.MonthlyReport(context.Background(), period[0], period[1])
		assert.ErrorIs(t, err, ErrInvalidReportPeriod)
	}
}
