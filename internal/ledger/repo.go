package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/abastecio/abastecio-backend/pkg/db/models"
	"github.com/abastecio/abastecio-backend/pkg/pagination"
)

// Repository manages persistence for ledger entries. The table is
// append-only: there are deliberately no update or delete operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.LedgerEntry) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.LedgerEntry, error)
	ListPage(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, string, error)
	SumByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.LedgerEntry, error) {
	query := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var entries []models.LedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListPage returns one cursor page of a customer's ledger, newest first. The
// cursor encodes the (created_at, id) of the last entry on the previous page;
// the id tiebreak keeps the order stable when entries share a timestamp.
func (r *repository) ListPage(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var entries []models.LedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, "", err
	}

	var next string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return entries, next, nil
}

func (r *repository) SumByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	var raw *string
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("customer_id = ?", customerID).
		Select("SUM(amount)").
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}
