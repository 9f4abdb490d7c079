package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/cache"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportService builds staff aggregate reports
type ReportService interface {
	// MonthlyReport aggregates orders placed in the given month
	MonthlyReport(ctx context.Context, year, month int) (*models.MonthlyReport, error)
}

type reportService struct {
	db       *gorm.DB
	cache    cache.Cache
	location *time.Location
}

// NewReportService creates a new instance of ReportService
func NewReportService(db *gorm.DB, c cache.Cache) ReportService {
	return &reportService{db: db, cache: c, location: time.Local}
}

func (s *reportService) MonthlyReport(ctx context.Context, year, month int) (*models.MonthlyReport, error) {
	if month < 1 || month > 12 || year < 2000 || year > 9999 {
		return nil, fmt.Errorf("%w: %04d-%02d", ErrInvalidReportPeriod, year, month)
	}
	return cache.Fetch(ctx, s.cache, cache.MonthlyReportKey(year, month), func() (*models.MonthlyReport, error) {
		return s.build(ctx, year, month)
	})
}

func (s *reportService) build(ctx context.Context, year, month int) (*models.MonthlyReport, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.location)
	end := start.AddDate(0, 1, 0)
	db := s.db.WithContext(ctx)

	var orders []models.Order
	err := db.Preload("Items.Dish").
		Where("datetime >= ? AND datetime < ?", start, end).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	report := &models.MonthlyReport{
		Year:    year,
		Month:   month,
		Revenue: decimal.Zero,
		Dishes:  []models.DishSalesReport{},
	}
	byDish := map[uint]*models.DishSalesReport{}
	for _, order := range orders {
		report.OrderCount++
		if order.State == models.OrderFinished {
			report.FinishedCount++
		}
		report.Revenue = report.Revenue.Add(order.TotalPrice)
		for _, item := range order.Items {
			line, ok := byDish[item.DishID]
			if !ok {
				line = &models.DishSalesReport{DishID: item.DishID, Revenue: decimal.Zero}
				if item.Dish != nil {
					line.NameEn = item.Dish.NameEn
					line.NameZh = item.Dish.NameZh
				}
				byDish[item.DishID] = line
			}
			line.Quantity += item.Quantity
			line.Revenue = line.Revenue.Add(item.Subtotal())
		}
	}
	for _, line := range byDish {
		report.Dishes = append(report.Dishes, *line)
	}
	sort.Slice(report.Dishes, func(i, j int) bool {
		if cmp := report.Dishes[i].Revenue.Cmp(report.Dishes[j].Revenue); cmp != 0 {
			return cmp > 0
		}
		return report.Dishes[i].DishID < report.Dishes[j].DishID
	})

	var ratings []int
	err = db.Model(&models.Review{}).
		Joins("JOIN orders ON orders.id = reviews.order_id").
		Where("orders.datetime >= ? AND orders.datetime < ?", start, end).
		Pluck("reviews.rating", &ratings).Error
	if err != nil {
		return nil, err
	}
	report.ReviewCount = len(ratings)
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r
		}
		avg := decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(ratings)))).Round(2)
		report.AverageRating = &avg
	}
	return report, nil
}
