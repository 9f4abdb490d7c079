package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderState is the lifecycle state of an order
type OrderState string

const (
	OrderUnfinished OrderState = "unfinished"
	OrderFinished   OrderState = "finished"
)

// Display returns the human readable label of the state
func (s OrderState) Display() string {
	switch s {
	case OrderFinished:
		return "Finished"
	case OrderUnfinished:
		return "Unfinished"
	default:
		return string(s)
	}
}

// Order is the persisted record of a checked out cart
type Order struct {
	ID         uint            `gorm:"primaryKey" json:"order_id"`
	ConsumerID uint            `gorm:"not null;index" json:"consumer_id"`
	Consumer   *User           `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Datetime   time.Time       `gorm:"not null;index" json:"datetime"`
	State      OrderState      `gorm:"size:20;not null;default:unfinished" json:"state"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0;check:total_price >= 0" json:"total_price" swaggertype:"string" example:"300.00"`
	PickupTime *datatypes.Time `json:"pickup_time,omitempty" swaggertype:"string" example:"18:30:00"`
	Items      []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// StateDisplay returns the label shown for the order state
func (o Order) StateDisplay() string {
	return o.State.Display()
}

// OrderItem is one line of an order with the dish price snapshotted at checkout
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"item_id"`
	OrderID   uint            `gorm:"not null;uniqueIndex:idx_order_dish" json:"order_id"`
	DishID    uint            `gorm:"not null;uniqueIndex:idx_order_dish;index" json:"dish_id"`
	Dish      *Dish           `gorm:"constraint:OnDelete:RESTRICT" json:"dish,omitempty"`
	Quantity  int             `gorm:"not null;check:quantity >= 1" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(8,2);not null;check:unit_price >= 0" json:"unit_price" swaggertype:"string" example:"150.00"`
}

// Subtotal returns quantity times unit price
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderStatus is the body of the JSON order status endpoint
type OrderStatus struct {
	OrderID      uint      `json:"order_id"`
	State        string    `json:"state"`
	StateDisplay string    `json:"state_display"`
	Datetime     time.Time `json:"datetime"`
	TotalPrice   string    `json:"total_price" example:"300.00"`
}

// NewOrderStatus builds the status view of an order
func NewOrderStatus(o Order) OrderStatus {
	return OrderStatus{
		OrderID:      o.ID,
		State:        string(o.State),
		StateDisplay: o.StateDisplay(),
		Datetime:     o.Datetime,
		TotalPrice:   o.TotalPrice.StringFixed(2),
	}
}
