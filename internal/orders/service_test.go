package orders

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/abastecio/abastecio-backend/internal/ledger"
	"github.com/abastecio/abastecio-backend/pkg/db/models"
	pkgerrors "github.com/abastecio/abastecio-backend/pkg/errors"
	"github.com/abastecio/abastecio-backend/pkg/pagination"
)

// world is an in-memory stand-in for the database. WithTx stages writes and
// either commits them or drops them, so rollback behavior is observable.
type world struct {
	mu        sync.Mutex
	products  map[uuid.UUID]*models.Product
	customers map[uuid.UUID]*models.Customer
	orders    map[uuid.UUID]*models.Order
	entries   []models.LedgerEntry

	stagedOrders  []*models.Order
	stagedEntries []models.LedgerEntry
	stagedTotals  map[uuid.UUID]decimal.Decimal

	failAddToDebt bool
}

func newWorld() *world {
	return &world{
		products:  map[uuid.UUID]*models.Product{},
		customers: map[uuid.UUID]*models.Customer{},
		orders:    map[uuid.UUID]*models.Order{},
	}
}

func (w *world) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stagedOrders = nil
	w.stagedEntries = nil
	w.stagedTotals = map[uuid.UUID]decimal.Decimal{}

	if err := fn(&gorm.DB{}); err != nil {
		w.stagedOrders = nil
		w.stagedEntries = nil
		w.stagedTotals = nil
		return err
	}

	for _, order := range w.stagedOrders {
		w.orders[order.ID] = order
	}
	w.entries = append(w.entries, w.stagedEntries...)
	for id, total := range w.stagedTotals {
		w.customers[id].TotalDebt = total
	}
	w.stagedOrders = nil
	w.stagedEntries = nil
	w.stagedTotals = nil
	return nil
}

func (w *world) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := w.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (w *world) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	c, ok := w.customers[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	clone := *c
	if w.stagedTotals != nil {
		if total, ok := w.stagedTotals[id]; ok {
			clone.TotalDebt = total
		}
	}
	return &clone, nil
}

func (w *world) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Customer, error) {
	return w.FindByID(ctx, id)
}

func (w *world) AddToDebt(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	if w.failAddToDebt {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodePersistence, "cached total update failed")
	}
	current, err := w.FindByID(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	total := current.TotalDebt.Add(delta)
	w.stagedTotals[id] = total
	return total, nil
}

// orderRepo adapts the world to the order repository.
type orderRepo struct{ w *world }

func (r orderRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r orderRepo) Create(ctx context.Context, order *models.Order) error {
	if _, ok := r.w.orders[order.ID]; ok {
		return pkgerrors.New(pkgerrors.CodeDuplicateOrder, "order already recorded")
	}
	for _, staged := range r.w.stagedOrders {
		if staged.ID == order.ID {
			return pkgerrors.New(pkgerrors.CodeDuplicateOrder, "order already recorded")
		}
	}
	clone := *order
	r.w.stagedOrders = append(r.w.stagedOrders, &clone)
	return nil
}

func (r orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := r.w.orders[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	clone := *order
	return &clone, nil
}

func (r orderRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.Order, error) {
	var out []models.Order
	for _, order := range r.w.orders {
		if order.CustomerID == customerID {
			out = append(out, *order)
		}
	}
	return out, nil
}

// entryRepo adapts the world to the ledger repository.
type entryRepo struct{ w *world }

func (r entryRepo) WithTx(tx *gorm.DB) ledger.Repository { return r }

func (r entryRepo) Create(ctx context.Context, entry *models.LedgerEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	r.w.stagedEntries = append(r.w.stagedEntries, *entry)
	return nil
}

func (r entryRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.LedgerEntry, error) {
	var out []models.LedgerEntry
	for _, entry := range r.w.entries {
		if entry.CustomerID == customerID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r entryRepo) ListPage(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, string, error) {
	entries, err := r.ListByCustomer(ctx, customerID, pagination.NormalizeLimit(params.Limit))
	return entries, "", err
}

func (r entryRepo) SumByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, entry := range r.w.entries {
		if entry.CustomerID == customerID {
			sum = sum.Add(entry.Amount)
		}
	}
	return sum, nil
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func newTestService(t *testing.T, w *world) Service {
	t.Helper()
	ledgerSvc, err := ledger.NewService(entryRepo{w: w}, w, w, nil)
	require.NoError(t, err)
	svc, err := NewService(orderRepo{w: w}, w, w, w, ledgerSvc, nil)
	require.NoError(t, err)
	return svc
}

func seedCustomer(w *world) *models.Customer {
	customer := &models.Customer{ID: uuid.New(), Name: "Dona Rosa", IsActive: true}
	w.customers[customer.ID] = customer
	return customer
}

func seedProduct(w *world, name, sellingPrice, discountPercent string) *models.Product {
	product := &models.Product{
		ID:               uuid.New(),
		Name:             name,
		BaseSellingPrice: decimal.RequireFromString(sellingPrice),
		DiscountPercent:  decimal.RequireFromString(discountPercent),
		IsActive:         true,
	}
	w.products[product.ID] = product
	return product
}

func TestRecordOrderComputesTotalsAndDebt(t *testing.T) {
	w := newWorld()
	svc := newTestService(t, w)
	customer := seedCustomer(w)
	product := seedProduct(w, "Rice 5kg", "15.00", "10")

	result, err := svc.Record(context.Background(), RecordInput{
		CustomerID: customer.ID,
		Items: []ItemInput{
			{ProductID: product.ID, Quantity: dec(t, "2")},
		},
		Discount: dec(t, "1.00"),
		PaidNow:  dec(t, "20.00"),
	})
	require.NoError(t, err)

	order := result.Order
	assert.True(t, dec(t, "27.00").Equal(order.Subtotal), "subtotal %s", order.Subtotal)
	assert.True(t, dec(t, "26.00").Equal(order.TotalAmount), "total %s", order.TotalAmount)
	assert.True(t, dec(t, "6.00").Equal(order.DebtChange), "debt change %s", order.DebtChange)
	assert.True(t, dec(t, "6.00").Equal(result.TotalDebt), "total debt %s", result.TotalDebt)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "Rice 5kg", order.Items[0].ProductNameSnapshot)
	assert.True(t, dec(t, "13.50").Equal(order.Items[0].UnitPrice))

	require.Len(t, w.entries, 1)
	entry := w.entries[0]
	require.NotNil(t, entry.SourceOrderID)
	assert.Equal(t, order.ID, *entry.SourceOrderID)
	assert.True(t, dec(t, "6.00").Equal(entry.Amount))
}

func TestRecordUsesNegotiatedPriceVerbatim(t *testing.T) {
	w := newWorld()
	svc := newTestService(t, w)
	customer := seedCustomer(w)
	product := seedProduct(w, "Beans 1kg", "8.00", "50")

	override := dec(t, "7.25")
	result, err := svc.Record(context.Background(), RecordInput{
		CustomerID: customer.ID,
		Items: []ItemInput{
			{ProductID: product.ID, Quantity: dec(t, "3"), UnitPrice: &override},
		},
		PaidNow: dec(t, "21.75"),
	})
	require.NoError(t, err)
	assert.True(t, dec(t, "7.25").Equal(result.Order.Items[0].UnitPrice))
	assert.True(t, result.Order.DebtChange.IsZero(), "debt change %s", result.Order.DebtChange)
	assert.True(t, result.TotalDebt.IsZero())
}

func TestRecordRejectsNegativeNegotiatedPrice(t *testing.T) {
	w := newWorld()
	svc := newTestService(t, w)
	customer := seedCustomer(w)
	product := seedProduct(w, "Beans 1kg", "8.00", "50")

	override := dec(t, "-5.00")
	_, err := svc.Record(context.Background(), RecordInput{
		CustomerID: customer.ID,
		Items: []ItemInput{
			{ProductID: product.ID, Quantity: dec(t, "2"), UnitPrice: &override},
		},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, w.orders, "rejected order must not be written")
	assert.Empty(t, w.entries, "rejected order must not touch the ledger")
}

func TestRecordFloorsTotalAtZero(t *testing.T) {
	w := newWorld()
	svc := newTestService(t, w)
	customer := seedCustomer(w)
	product := seedProduct(w, "Salt 1kg", "2.00", "0")

	result, err := svc.Record(context.Background(), RecordInput{
		CustomerID: customer.ID,
		Items: []ItemInput{
			{ProductID: product.ID, Quantity: dec(t, "1")},
		},
		Discount: dec(t, "5.00"),
		PaidNow:  dec(t, "3.00"),
	})
	require.NoError(t, err)
	assert.True(t, result.Order.TotalAmount.IsZero())
	assert.True(t, dec(t, "-3.00").Equal(result.Order.DebtChange))
	assert.True(t, dec(t, "-3.00").Equal(result.TotalDebt))
}

func TestRecordRejectsEmptyAndZeroQuantityOrders(t *testing.T) {
	w := newWorld()
	svc := newTestService(t, w)
	customer := seedCustomer(w)
	product := seedProduct(w, "Rice 5kg", "15.00", "0")

	_, err := svc.Record(context.Background(), RecordInput{CustomerID: customer.ID})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeEmptyOrder))

	_, err = svc.Record(context.Background(), RecordInput{
		CustomerID: customer.ID,
		Items: []ItemInput{
			{ProductID: product.ID, Quantity: decimal.Zero},
		},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeEmptyOrder))
	assert.Empty(t, w.orders)
	assert.Empty(t, w.entries)
}

func TestRecordRejectsUnknownOrInactiveProduct(t *testing.T) {
	w := newWorld()
	svc := newTestService(t, w)
	customer := seedCustomer(w)

	_, err := svc.Record(context.Background(), RecordInput{
		CustomerID: customer.ID,
		Items: []ItemInput{
			{ProductID: uuid.New(), Quantity: dec(t, "1")},
		},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnknownProduct))

	retired := seedProduct(w, "Old Brand Oil", "11.00", "0")
	retired.IsActive = false
	_, err = svc.Record(context.Background(), RecordInput{
		CustomerID: customer.ID,
		Items: []ItemInput{
			{ProductID: retired.ID, Quantity: dec(t, "1")},
		},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnknownProduct))
}

func TestRecordDuplicateOrderID(t *testing.T) {
	w := newWorld()
	svc := newTestService(t, w)
	customer := seedCustomer(w)
	product := seedProduct(w, "Rice 5kg", "15.00", "10")

	input := RecordInput{
		ID:         uuid.New(),
		CustomerID: customer.ID,
		Items: []ItemInput{
			{ProductID: product.ID, Quantity: dec(t, "1")},
		},
	}

	first, err := svc.Record(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, dec(t, "13.50").Equal(first.TotalDebt))

	_, err = svc.Record(context.Background(), input)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDuplicateOrder))

	// the retry must leave the ledger untouched
	assert.Len(t, w.entries, 1)
	assert.True(t, dec(t, "13.50").Equal(w.customers[customer.ID].TotalDebt))
}

func TestRecordRollsBackWhenLedgerAppendFails(t *testing.T) {
	w := newWorld()
	svc := newTestService(t, w)
	customer := seedCustomer(w)
	product := seedProduct(w, "Rice 5kg", "15.00", "10")
	w.failAddToDebt = true

	_, err := svc.Record(context.Background(), RecordInput{
		CustomerID: customer.ID,
		Items: []ItemInput{
			{ProductID: product.ID, Quantity: dec(t, "1")},
		},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodePersistence))

	assert.Empty(t, w.orders)
	assert.Empty(t, w.entries)
	assert.True(t, w.customers[customer.ID].TotalDebt.IsZero())
}

func TestRecordRejectsUnknownCustomer(t *testing.T) {
	w := newWorld()
	svc := newTestService(t, w)
	product := seedProduct(w, "Rice 5kg", "15.00", "10")

	_, err := svc.Record(context.Background(), RecordInput{
		CustomerID: uuid.New(),
		Items: []ItemInput{
			{ProductID: product.ID, Quantity: dec(t, "1")},
		},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	assert.Empty(t, w.orders)
	assert.Empty(t, w.entries)
}
