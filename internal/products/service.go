package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/abastecio/abastecio-backend/internal/pricing"
	"github.com/abastecio/abastecio-backend/pkg/db/models"
	pkgerrors "github.com/abastecio/abastecio-backend/pkg/errors"
)

// CreateInput carries a new catalog entry.
type CreateInput struct {
	Name             string
	BaseBuyingPrice  decimal.Decimal
	BaseSellingPrice decimal.Decimal
	DiscountPercent  decimal.Decimal
	ImageKey         *string
}

// UpdateInput mirrors CreateInput plus the active flag.
type UpdateInput struct {
	Name             string
	BaseBuyingPrice  decimal.Decimal
	BaseSellingPrice decimal.Decimal
	DiscountPercent  decimal.Decimal
	ImageKey         *string
	IsActive         bool
}

// View is a product with its derived selling price attached. The derived
// price is never stored, it is recomputed on every read.
type View struct {
	models.Product
	EffectiveSellingPrice decimal.Decimal `json:"effectiveSellingPrice"`
}

// Service exposes catalog management.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*View, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*View, error)
	Get(ctx context.Context, id uuid.UUID) (*View, error)
	List(ctx context.Context, search string, includeInactive bool) ([]View, error)
}

type service struct {
	repo Repository
}

// NewService wires the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "products: repository is required")
	}
	return &service{repo: repo}, nil
}

func validatePricing(basePrice, discountPercent decimal.Decimal) error {
	_, err := pricing.EffectivePrice(basePrice, discountPercent)
	return err
}

func (s *service) Create(ctx context.Context, input CreateInput) (*View, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.BaseBuyingPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buying price must not be negative")
	}
	if err := validatePricing(input.BaseSellingPrice, input.DiscountPercent); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:             name,
		BaseBuyingPrice:  input.BaseBuyingPrice.Round(pricing.MoneyPlaces),
		BaseSellingPrice: input.BaseSellingPrice.Round(pricing.MoneyPlaces),
		DiscountPercent:  input.DiscountPercent,
		ImageKey:         input.ImageKey,
		IsActive:         true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating product")
	}
	return toView(product)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*View, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.BaseBuyingPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buying price must not be negative")
	}
	if err := validatePricing(input.BaseSellingPrice, input.DiscountPercent); err != nil {
		return nil, err
	}

	product.Name = name
	product.BaseBuyingPrice = input.BaseBuyingPrice.Round(pricing.MoneyPlaces)
	product.BaseSellingPrice = input.BaseSellingPrice.Round(pricing.MoneyPlaces)
	product.DiscountPercent = input.DiscountPercent
	product.ImageKey = input.ImageKey
	product.IsActive = input.IsActive
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "updating product")
	}
	return toView(product)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toView(product)
}

func (s *service) List(ctx context.Context, search string, includeInactive bool) ([]View, error) {
	products, err := s.repo.List(ctx, search, includeInactive)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(products))
	for i := range products {
		view, err := toView(&products[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func toView(product *models.Product) (*View, error) {
	price, err := pricing.EffectiveProductPrice(product)
	if err != nil {
		return nil, err
	}
	return &View{Product: *product, EffectiveSellingPrice: price}, nil
}
