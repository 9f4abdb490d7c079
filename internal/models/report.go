package models

import "github.com/shopspring/decimal"

// MonthlyReport aggregates the orders placed in one calendar month
type MonthlyReport struct {
	Year          int               `json:"year"`
	Month         int               `json:"month"`
	OrderCount    int               `json:"order_count"`
	FinishedCount int               `json:"finished_count"`
	Revenue       decimal.Decimal   `json:"revenue" swaggertype:"string" example:"1250.00"`
	ReviewCount   int               `json:"review_count"`
	AverageRating *decimal.Decimal  `json:"average_rating" swaggertype:"string" example:"4.50"`
	Dishes        []DishSalesReport `json:"dishes"`
}

// DishSalesReport is one dish line of a monthly report
type DishSalesReport struct {
	DishID   uint            `json:"dish_id"`
	NameEn   string          `json:"name_en"`
	NameZh   string          `json:"name_zh"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue" swaggertype:"string" example:"300.00"`
}
