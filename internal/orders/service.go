package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/abastecio/abastecio-backend/internal/ledger"
	"github.com/abastecio/abastecio-backend/internal/pricing"
	"github.com/abastecio/abastecio-backend/pkg/db/models"
	pkgerrors "github.com/abastecio/abastecio-backend/pkg/errors"
)

// txRunner is the transaction slice of the database client.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// productFinder is the catalog slice order creation needs.
type productFinder interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// customerLocker pins the customer row for the duration of the write.
type customerLocker interface {
	LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Customer, error)
}

// orderObserver records order throughput for the metrics endpoint.
type orderObserver interface {
	ObserveOrder(totalAmount float64, items int)
}

// ItemInput is one requested order line. A nil UnitPrice means "charge the
// catalog's effective price"; a non-nil one is a negotiated price used as is.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice *decimal.Decimal
}

// RecordInput is a complete order submission. ID may be supplied by the
// caller so retries of the same submission are detected as duplicates.
type RecordInput struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	OrderDate  time.Time
	Items      []ItemInput
	Discount   decimal.Decimal
	PaidNow    decimal.Decimal
	Notes      *string
}

// RecordResult carries the persisted order and the customer's debt total
// after the ledger append committed.
type RecordResult struct {
	Order     *models.Order
	TotalDebt decimal.Decimal
}

// Service records orders and exposes order history.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*RecordResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.Order, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	products  productFinder
	customers customerLocker
	ledger    ledger.Service
	metrics   orderObserver
}

// NewService wires order recording. The metrics observer may be nil.
func NewService(repo Repository, tx txRunner, products productFinder, customers customerLocker, ledgerSvc ledger.Service, metrics orderObserver) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders: repository is required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders: transaction runner is required")
	}
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders: product finder is required")
	}
	if customers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders: customer locker is required")
	}
	if ledgerSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders: ledger service is required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		products:  products,
		customers: customers,
		ledger:    ledgerSvc,
		metrics:   metrics,
	}, nil
}

// Record freezes prices, computes the order totals, and persists the order
// together with its ledger entry in one transaction. The customer's cached
// debt moves by exactly the order's debt change.
func (s *service) Record(ctx context.Context, input RecordInput) (*RecordResult, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyOrder, "order has no items")
	}
	if input.Discount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must not be negative")
	}
	if input.PaidNow.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "paid amount must not be negative")
	}

	items, subtotal, err := s.buildItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	discount := input.Discount.Round(pricing.MoneyPlaces)
	totalAmount := subtotal.Sub(discount)
	if totalAmount.IsNegative() {
		totalAmount = decimal.Zero
	}
	paidNow := input.PaidNow.Round(pricing.MoneyPlaces)
	debtChange := totalAmount.Sub(paidNow)

	orderID := input.ID
	if orderID == uuid.Nil {
		orderID = uuid.New()
	}
	orderDate := input.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now().UTC()
	}

	order := &models.Order{
		ID:          orderID,
		CustomerID:  input.CustomerID,
		OrderDate:   orderDate,
		Subtotal:    subtotal,
		Discount:    discount,
		TotalAmount: totalAmount,
		PaidNow:     paidNow,
		DebtChange:  debtChange,
		Notes:       input.Notes,
		Items:       items,
	}

	unlock := s.ledger.LockCustomer(input.CustomerID)
	defer unlock()

	var totalDebt decimal.Decimal
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.customers.LockByID(ctx, tx, input.CustomerID); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		_, total, err := s.ledger.AppendOrderEntry(ctx, tx, ledger.OrderEntryInput{
			CustomerID: input.CustomerID,
			OrderID:    order.ID,
			DebtChange: debtChange,
		})
		if err != nil {
			return err
		}
		totalDebt = total
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		amount, _ := order.TotalAmount.Float64()
		s.metrics.ObserveOrder(amount, len(order.Items))
	}
	return &RecordResult{Order: order, TotalDebt: totalDebt}, nil
}

// buildItems resolves each requested line against the catalog and freezes
// its price. Inactive and unknown products are rejected the same way.
func (s *service) buildItems(ctx context.Context, inputs []ItemInput) ([]models.OrderItem, decimal.Decimal, error) {
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, item := range inputs {
		if item.ProductID == uuid.Nil {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "item product id is required")
		}
		if !item.Quantity.IsPositive() {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeEmptyOrder, "item quantity must be positive").
				WithDetails(map[string]string{"productId": item.ProductID.String()})
		}
		ids = append(ids, item.ProductID)
	}

	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}
	byID := make(map[uuid.UUID]*models.Product, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	items := make([]models.OrderItem, 0, len(inputs))
	subtotal := decimal.Zero
	for _, item := range inputs {
		product, ok := byID[item.ProductID]
		if !ok || !product.IsActive {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeUnknownProduct, "product unavailable").
				WithDetails(map[string]string{"productId": item.ProductID.String()})
		}

		unitPrice, err := pricing.ResolveUnitPrice(product, item.UnitPrice)
		if err != nil {
			return nil, decimal.Zero, err
		}
		lineTotal := item.Quantity.Mul(unitPrice).Round(pricing.MoneyPlaces)
		subtotal = subtotal.Add(lineTotal)

		items = append(items, models.OrderItem{
			ProductID:           product.ID,
			ProductNameSnapshot: product.Name,
			Quantity:            item.Quantity,
			UnitPrice:           unitPrice,
			LineTotal:           lineTotal,
		})
	}
	return items, subtotal.Round(pricing.MoneyPlaces), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.Order, error) {
	return s.repo.ListByCustomer(ctx, customerID, limit)
}
