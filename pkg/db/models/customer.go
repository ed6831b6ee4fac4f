package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is a buyer on the roster. TotalDebt is the cached running sum of
// the customer's ledger entries; it is only ever written in the same
// transaction that appends an entry, never set directly from the outside.
type Customer struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string          `gorm:"column:name;not null"`
	Location  string          `gorm:"column:location;not null"`
	Phone     string          `gorm:"column:phone;not null"`
	Email     *string         `gorm:"column:email"`
	Notes     *string         `gorm:"column:notes"`
	TotalDebt decimal.Decimal `gorm:"column:total_debt;type:numeric(12,2);not null;default:0"`
	IsActive  bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
