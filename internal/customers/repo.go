package customers

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/abastecio/abastecio-backend/pkg/db/models"
	pkgerrors "github.com/abastecio/abastecio-backend/pkg/errors"
)

// Repository manages customer persistence, including the row-level locking
// and cached-total maintenance the debt ledger relies on.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, customer *models.Customer) error
	Update(ctx context.Context, customer *models.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, search string, includeInactive bool) ([]models.Customer, error)
	LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Customer, error)
	AddToDebt(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a customer repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *repository) Update(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading customer")
	}
	return &customer, nil
}

func (r *repository) List(ctx context.Context, search string, includeInactive bool) ([]models.Customer, error) {
	query := r.db.WithContext(ctx).Model(&models.Customer{}).Order("name ASC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	if trimmed := strings.TrimSpace(search); trimmed != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(trimmed)+"%")
	}
	var customers []models.Customer
	if err := query.Find(&customers).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing customers")
	}
	return customers, nil
}

// LockByID loads the customer row under FOR UPDATE so concurrent ledger
// writers in other processes serialize on it as well.
func (r *repository) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Customer, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	var customer models.Customer
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&customer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "locking customer")
	}
	return &customer, nil
}

// AddToDebt shifts the cached running total. Callers must hold the customer
// lock and run inside the transaction that appends the ledger entry.
func (r *repository) AddToDebt(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	db := r.db
	if tx != nil {
		db = tx
	}
	res := db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		Update("total_debt", gorm.Expr("total_debt + ?", delta))
	if res.Error != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodePersistence, res.Error, "updating cached total")
	}
	if res.RowsAffected == 0 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}

	var customer models.Customer
	if err := db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "reloading cached total")
	}
	return customer.TotalDebt, nil
}
