package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/access"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/cache"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/cart"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/events"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// PickupNow is the pickup time sentinel for "as soon as possible"
	PickupNow = "now"

	pickupSlot     = 15 * time.Minute
	maxPickupSlots = 32
)

// OrderService handles checkout and the order lifecycle
type OrderService interface {
	// Checkout turns the principal's cart into an order in one transaction
	Checkout(ctx context.Context, principal access.Principal, pickupTime string) (*models.Order, error)
	// PickupTimes lists the pickup choices offered at checkout
	PickupTimes() []string
	// History returns the principal's orders, newest first
	History(ctx context.Context, principal access.Principal) ([]models.Order, error)
	// GetOrder returns an order with its items if the principal may see it
	GetOrder(ctx context.Context, principal access.Principal, id uint) (*models.Order, error)
	// OrderItems returns the lines of an order
	OrderItems(ctx context.Context, orderID uint) ([]models.OrderItem, error)
	// Status returns the status view of an order
	Status(ctx context.Context, principal access.Principal, id uint) (models.OrderStatus, error)
	// CompleteOrder marks an unfinished order as finished
	CompleteOrder(ctx context.Context, id uint) (*models.Order, error)
	// ListOrders returns every order, optionally restricted to one state
	ListOrders(ctx context.Context, state string) ([]models.Order, error)
}

type orderService struct {
	db          *gorm.DB
	cache       cache.Cache
	invalidator *cache.Invalidator
	carts       cart.Store
	publisher   events.Publisher
	now         func() time.Time
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(db *gorm.DB, c cache.Cache, carts cart.Store, publisher events.Publisher) OrderService {
	return &orderService{
		db:          db,
		cache:       c,
		invalidator: cache.NewInvalidator(c),
		carts:       carts,
		publisher:   publisher,
		now:         time.Now,
	}
}

// ParsePickupTime validates a pickup time against now.
// Empty input and "now" mean no scheduled time. Other values must be
// an HH:MM or HH:MM:SS time later today that is not already past.
func ParsePickupTime(raw string, now time.Time) (*datatypes.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, PickupNow) {
		return nil, nil
	}
	var parsed time.Time
	var err error
	for _, layout := range pickupLayouts {
		if parsed, err = time.Parse(layout, raw); err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not in HH:MM format", ErrInvalidPickupTime, raw)
	}
	slot := time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), parsed.Second(), 0, now.Location())
	if slot.Before(now.Truncate(time.Minute)) {
		return nil, fmt.Errorf("%w: %s has already passed", ErrInvalidPickupTime, raw)
	}
	t := datatypes.NewTime(parsed.Hour(), parsed.Minute(), parsed.Second(), 0)
	return &t, nil
}

var pickupLayouts = []string{"15:04", "15:04:05"}

// PickupTimesAt returns "now" followed by the remaining quarter hour slots of the day
func PickupTimesAt(now time.Time) []string {
	times := []string{PickupNow}
	slotMinutes := int(pickupSlot / time.Minute)
	next := (now.Hour()*60+now.Minute())/slotMinutes*slotMinutes + slotMinutes
	for i := 0; i < maxPickupSlots; i++ {
		minutes := next + i*slotMinutes
		if minutes >= 24*60 {
			break
		}
		times = append(times, fmt.Sprintf("%02d:%02d", minutes/60, minutes%60))
	}
	return times
}

func (s *orderService) PickupTimes() []string {
	return PickupTimesAt(s.now())
}

func (s *orderService) Checkout(ctx context.Context, principal access.Principal, pickupTime string) (*models.Order, error) {
	if !principal.Can(access.PlaceOrder) {
		return nil, ErrNotPermitted
	}

	session := cart.SessionKey(principal.UserID)
	c, err := s.carts.Load(ctx, session)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	now := s.now()
	pickup, err := ParsePickupTime(pickupTime, now)
	if err != nil {
		return nil, err
	}

	order := models.Order{
		ConsumerID: principal.UserID,
		Datetime:   now,
		State:      models.OrderUnfinished,
		TotalPrice: decimal.Zero,
		PickupTime: pickup,
	}
	dishIDs := c.DishIDs()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(dishIDs))
		for _, dishID := range dishIDs {
			var dish models.Dish
			if err := tx.First(&dish, dishID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %d", ErrDishNotFound, dishID)
				}
				return err
			}
			item := models.OrderItem{
				OrderID:   order.ID,
				DishID:    dish.ID,
				Quantity:  c.Quantity(dishID),
				UnitPrice: dish.Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			item.Dish = &dish
			items = append(items, item)
			total = total.Add(item.Subtotal())
		}

		if err := tx.Model(&order).Update("total_price", total).Error; err != nil {
			return err
		}
		order.TotalPrice = total
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, session); err != nil {
		log.WithError(err).WithField("order_id", order.ID).Error("Failed to clear cart after checkout")
	}
	s.invalidator.Invalidate(ctx, cache.OrderCreated, cache.Scope{OrderID: order.ID, UserID: principal.UserID, DishIDs: dishIDs})
	publish(ctx, s.publisher, events.Event{
		Type:       events.OrderCreated,
		OrderID:    order.ID,
		UserID:     principal.UserID,
		DishIDs:    dishIDs,
		TotalPrice: order.TotalPrice.StringFixed(2),
	})

	log.WithFields(log.Fields{
		"order_id":    order.ID,
		"user_id":     principal.UserID,
		"items":       len(order.Items),
		"total_price": order.TotalPrice.StringFixed(2),
	}).Info("Order created")
	return &order, nil
}

func (s *orderService) History(ctx context.Context, principal access.Principal) ([]models.Order, error) {
	ids, err := cache.Fetch(ctx, s.cache, cache.UserOrdersKey(principal.UserID), func() ([]uint, error) {
		ids := []uint{}
		err := s.db.WithContext(ctx).Model(&models.Order{}).
			Where("consumer_id = ?", principal.UserID).
			Order("datetime DESC, id DESC").
			Pluck("id", &ids).Error
		return ids, err
	})
	if err != nil {
		return nil, err
	}

	orders := []models.Order{}
	if len(ids) == 0 {
		return orders, nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("datetime DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// visible loads an order the principal owns or may manage.
// Other orders are reported as not found.
func (s *orderService) visible(ctx context.Context, principal access.Principal, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.ConsumerID != principal.UserID && !principal.Can(access.ManageOrders) {
		return nil, ErrOrderNotFound
	}
	return &order, nil
}

func (s *orderService) GetOrder(ctx context.Context, principal access.Principal, id uint) (*models.Order, error) {
	order, err := s.visible(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	items, err := s.OrderItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (s *orderService) OrderItems(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	return cache.Fetch(ctx, s.cache, cache.OrderItemsKey(orderID), func() ([]models.OrderItem, error) {
		items := []models.OrderItem{}
		err := s.db.WithContext(ctx).Preload("Dish").Where("order_id = ?", orderID).Order("id").Find(&items).Error
		return items, err
	})
}

func (s *orderService) Status(ctx context.Context, principal access.Principal, id uint) (models.OrderStatus, error) {
	order, err := s.visible(ctx, principal, id)
	if err != nil {
		return models.OrderStatus{}, err
	}
	return models.NewOrderStatus(*order), nil
}

func (s *orderService) CompleteOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		result := tx.Model(&models.Order{}).
			Where("id = ? AND state = ?", id, models.OrderUnfinished).
			Update("state", models.OrderFinished)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrOrderAlreadyFinished
		}
		order.State = models.OrderFinished
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidator.Invalidate(ctx, cache.OrderCompleted, cache.Scope{OrderID: order.ID, UserID: order.ConsumerID})
	publish(ctx, s.publisher, events.Event{
		Type:       events.OrderFinished,
		OrderID:    order.ID,
		UserID:     order.ConsumerID,
		TotalPrice: order.TotalPrice.StringFixed(2),
	})
	return &order, nil
}

func (s *orderService) ListOrders(ctx context.Context, state string) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Preload("Items.Dish").Order("datetime DESC, id DESC")
	switch models.OrderState(state) {
	case "":
	case models.OrderFinished, models.OrderUnfinished:
		query = query.Where("state = ?", state)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidOrderState, state)
	}

	orders := []models.Order{}
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
