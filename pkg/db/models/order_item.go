package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is one frozen order line. UnitPrice is either the caller's
// negotiated override or the product's effective price at creation time.
type OrderItem struct {
	ID                  uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID             uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID           uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductNameSnapshot string          `gorm:"column:product_name_snapshot;not null"`
	Quantity            decimal.Decimal `gorm:"column:quantity;type:numeric(12,3);not null"`
	UnitPrice           decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal           decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
}
