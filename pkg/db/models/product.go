package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog item offered to customers. Selling price and
// percentage discount are the inputs to the pricing engine; the effective
// selling price is derived on read and never stored.
type Product struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string          `gorm:"column:name;not null"`
	BaseBuyingPrice  decimal.Decimal `gorm:"column:base_buying_price;type:numeric(12,2);not null"`
	BaseSellingPrice decimal.Decimal `gorm:"column:base_selling_price;type:numeric(12,2);not null"`
	DiscountPercent  decimal.Decimal `gorm:"column:discount_percent;type:numeric(5,2);not null;default:0"`
	ImageKey         *string         `gorm:"column:image_key"`
	IsActive         bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
