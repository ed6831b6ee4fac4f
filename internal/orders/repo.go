package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abastecio/abastecio-backend/pkg/db"
	"github.com/abastecio/abastecio-backend/pkg/db/models"
	pkgerrors "github.com/abastecio/abastecio-backend/pkg/errors"
)

// Repository persists orders and their frozen line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create inserts the order together with its items. A primary key collision
// means the caller already submitted this order id; it surfaces as a
// duplicate so retries stay harmless.
func (r *repository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if db.IsUniqueViolation(err, "") || errors.Is(err, gorm.ErrDuplicatedKey) {
			return pkgerrors.Wrap(pkgerrors.CodeDuplicateOrder, err, "order already recorded")
		}
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating order")
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading order")
	}
	return &order, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("order_date DESC, created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing orders")
	}
	return orders, nil
}
