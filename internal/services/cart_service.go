package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/cart"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CartLine is one resolved cart entry
type CartLine struct {
	Dish     models.Dish     `json:"dish"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal" swaggertype:"string" example:"300.00"`
}

// CartView is a cart resolved against the live catalog
type CartView struct {
	Items []CartLine      `json:"items"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total" swaggertype:"string" example:"300.00"`
}

// CartService manages the session cart of a user
type CartService interface {
	// View resolves the cart and silently drops dishes that no longer exist
	View(ctx context.Context, session string) (*CartView, error)
	// Add increments a dish; unknown or unavailable dishes are not found
	Add(ctx context.Context, session string, dishID uint) (cart.Cart, error)
	// Remove decrements a dish; unknown dishes are not found
	Remove(ctx context.Context, session string, dishID uint) (cart.Cart, error)
	// Clear empties the cart
	Clear(ctx context.Context, session string) error
}

type cartService struct {
	db    *gorm.DB
	store cart.Store
}

// NewCartService creates a new instance of CartService
func NewCartService(db *gorm.DB, store cart.Store) CartService {
	return &cartService{db: db, store: store}
}

func (s *cartService) View(ctx context.Context, session string) (*CartView, error) {
	c, err := s.store.Load(ctx, session)
	if err != nil {
		return nil, err
	}

	view := &CartView{Items: []CartLine{}, Total: decimal.Zero}
	if c.IsEmpty() {
		return view, nil
	}

	ids := c.DishIDs()
	var dishes []models.Dish
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&dishes).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Dish, len(dishes))
	for _, d := range dishes {
		byID[d.ID] = d
	}

	pruned := false
	for _, id := range ids {
		dish, ok := byID[id]
		if !ok {
			c.Drop(id)
			pruned = true
			continue
		}
		qty := c.Quantity(id)
		line := CartLine{Dish: dish, Quantity: qty, Subtotal: dish.Price.Mul(decimal.NewFromInt(int64(qty)))}
		view.Items = append(view.Items, line)
		view.Count += qty
		view.Total = view.Total.Add(line.Subtotal)
	}

	if pruned {
		log.WithField("session", session).Info("Pruned deleted dishes from cart")
		if err := s.store.Save(ctx, session, c); err != nil {
			return nil, err
		}
	}
	return view, nil
}

func (s *cartService) lookup(ctx context.Context, dishID uint) (*models.Dish, error) {
	var dish models.Dish
	if err := s.db.WithContext(ctx).First(&dish, dishID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrDishNotFound, dishID)
		}
		return nil, err
	}
	return &dish, nil
}

func (s *cartService) Add(ctx context.Context, session string, dishID uint) (cart.Cart, error) {
	dish, err := s.lookup(ctx, dishID)
	if err != nil {
		return nil, err
	}
	if !dish.IsAvailable {
		return nil, fmt.Errorf("%w: %d is not available", ErrDishNotFound, dishID)
	}

	c, err := s.store.Load(ctx, session)
	if err != nil {
		return nil, err
	}
	c.Add(dishID)
	if err := s.store.Save(ctx, session, c); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"session": session, "dish_id": dishID, "units": c.Len()}).Debug("Dish added to cart")
	return c, nil
}

func (s *cartService) Remove(ctx context.Context, session string, dishID uint) (cart.Cart, error) {
	if _, err := s.lookup(ctx, dishID); err != nil {
		return nil, err
	}

	c, err := s.store.Load(ctx, session)
	if err != nil {
		return nil, err
	}
	if !c.Remove(dishID) {
		return c, nil
	}
	if err := s.store.Save(ctx, session, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *cartService) Clear(ctx context.Context, session string) error {
	return s.store.Clear(ctx, session)
}
