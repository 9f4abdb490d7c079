package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dish represents a menu item
type Dish struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	NameZh        string          `gorm:"size:100;not null" json:"name_zh"`
	NameEn        string          `gorm:"size:100;not null" json:"name_en"`
	DescriptionZh string          `json:"description_zh"`
	DescriptionEn string          `json:"description_en"`
	Price         decimal.Decimal `gorm:"type:decimal(8,2);not null;check:price >= 0" json:"price" swaggertype:"string" example:"150.00"`
	ImageURL      string          `json:"image_url"`
	IsAvailable   bool            `gorm:"not null;default:true" json:"is_available"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// DishInput is the payload accepted by staff dish create and update
type DishInput struct {
	NameZh        string          `json:"name_zh" binding:"required,max=100"`
	NameEn        string          `json:"name_en" binding:"required,max=100"`
	DescriptionZh string          `json:"description_zh"`
	DescriptionEn string          `json:"description_en"`
	Price         decimal.Decimal `json:"price" swaggertype:"string" example:"150.00"`
	ImageURL      string          `json:"image_url"`
	IsAvailable   *bool           `json:"is_available"`
}

// Apply copies the input onto a dish record
func (in DishInput) Apply(d *Dish) {
	d.NameZh = in.NameZh
	d.NameEn = in.NameEn
	d.DescriptionZh = in.DescriptionZh
	d.DescriptionEn = in.DescriptionEn
	d.Price = in.Price.Round(2)
	d.ImageURL = in.ImageURL
	if in.IsAvailable != nil {
		d.IsAvailable = *in.IsAvailable
	} else if d.ID == 0 {
		d.IsAvailable = true
	}
}

// DishFilter holds the public catalog query parameters
type DishFilter struct {
	Query    string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}
