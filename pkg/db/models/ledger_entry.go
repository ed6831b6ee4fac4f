package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/abastecio/abastecio-backend/pkg/enums"
)

// LedgerEntry records one immutable signed balance change for a customer.
// Positive amounts increase debt, negative amounts decrease it. Entries are
// never updated or deleted; the customer's total debt is their ordered sum.
// SourceOrderID is set iff the entry was produced by an order.
type LedgerEntry struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID    uuid.UUID          `gorm:"column:customer_id;type:uuid;not null;index"`
	Source        enums.LedgerSource `gorm:"column:source;type:text;not null"`
	Amount        decimal.Decimal    `gorm:"column:amount;type:numeric(12,2);not null"`
	Reason        string             `gorm:"column:reason;not null"`
	SourceOrderID *uuid.UUID         `gorm:"column:source_order_id;type:uuid;uniqueIndex"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
}
