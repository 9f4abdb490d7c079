package cache

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
)

func hashTerms(terms ...string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(strings.Join(terms, "|")))
}

// DishListKey is the key of a public catalog query
func DishListKey(f models.DishFilter) string {
	minPrice, maxPrice := "", ""
	if f.MinPrice != nil {
		minPrice = f.MinPrice.String()
	}
	if f.MaxPrice != nil {
		maxPrice = f.MaxPrice.String()
	}
	return "dishes:list:" + hashTerms(strings.ToLower(strings.TrimSpace(f.Query)), minPrice, maxPrice)
}

func DishDetailKey(dishID uint) string {
	return fmt.Sprintf("dishes:detail:%d", dishID)
}

func DishReviewsKey(dishID uint) string {
	return fmt.Sprintf("dishes:%d:reviews", dishID)
}

func OrderItemsKey(orderID uint) string {
	return fmt.Sprintf("orders:%d:items", orderID)
}

func UserOrdersKey(userID uint) string {
	return fmt.Sprintf("users:%d:orders", userID)
}

// ReviewListKey is the key of a public dish review list query
func ReviewListKey(f models.ReviewFilter) string {
	rating := ""
	if f.Rating != nil {
		rating = strconv.Itoa(*f.Rating)
	}
	return "reviews:list:" + hashTerms(strings.ToLower(strings.TrimSpace(f.Dish)), strconv.FormatUint(uint64(f.OrderID), 10), rating, f.Sort)
}

func MonthlyReportKey(year, month int) string {
	return fmt.Sprintf("reports:monthly:%04d-%02d", year, month)
}
