package customers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/abastecio/abastecio-backend/pkg/db/models"
)

// CreateInput carries the caller-editable customer fields. The cached debt
// total is never accepted from callers; it only moves through the ledger.
type CreateInput struct {
	Name     string
	Location string
	Phone    string
	Email    *string
	Notes    *string
}

// UpdateInput mirrors CreateInput plus the active flag.
type UpdateInput struct {
	Name     string
	Location string
	Phone    string
	Email    *string
	Notes    *string
	IsActive bool
}

// Detail bundles a customer with recent account activity.
type Detail struct {
	Customer *models.Customer
	Orders   []models.Order
	Entries  []models.LedgerEntry
}

// Summary is the list-view projection of a customer.
type Summary struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Location  string          `json:"location"`
	Phone     string          `json:"phone"`
	TotalDebt decimal.Decimal `json:"totalDebt"`
	IsActive  bool            `json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ToSummary projects a customer for list responses.
func ToSummary(c *models.Customer) Summary {
	return Summary{
		ID:        c.ID,
		Name:      c.Name,
		Location:  c.Location,
		Phone:     c.Phone,
		TotalDebt: c.TotalDebt,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
	}
}
