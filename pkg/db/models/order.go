package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a point-in-time snapshot: line prices, totals, and the resulting
// debt change are computed once at creation and never recomputed, even when
// the underlying product prices move later.
type Order struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID  uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;index"`
	OrderDate   time.Time       `gorm:"column:order_date;not null"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount    decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null"`
	PaidNow     decimal.Decimal `gorm:"column:paid_now;type:numeric(12,2);not null;default:0"`
	DebtChange  decimal.Decimal `gorm:"column:debt_change;type:numeric(12,2);not null"`
	Notes       *string         `gorm:"column:notes"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
