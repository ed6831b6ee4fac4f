package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/abastecio/abastecio-backend/pkg/db/models"
	"github.com/abastecio/abastecio-backend/pkg/enums"
	pkgerrors "github.com/abastecio/abastecio-backend/pkg/errors"
	"github.com/abastecio/abastecio-backend/pkg/pagination"
)

const moneyPlaces = 2

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// customerStore is the slice of the customer repository the ledger needs: row
// locking inside a transaction and the cached-total bump that must commit
// atomically with every append.
type customerStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Customer, error)
	AddToDebt(ctx context.Context, tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
}

type appendObserver interface {
	ObserveAppend(source string)
}

// Service maintains the per-customer append-only debt ledger. All mutations
// for one customer run in mutual exclusion; the cached total on the customer
// row is updated in the same transaction as the append, so the two can never
// diverge.
type Service interface {
	Adjust(ctx context.Context, input AdjustInput) (*AdjustResult, error)
	CurrentBalance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
	Entries(ctx context.Context, customerID uuid.UUID, limit int) ([]models.LedgerEntry, error)
	EntriesPage(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, string, error)
	AppendOrderEntry(ctx context.Context, tx *gorm.DB, input OrderEntryInput) (*models.LedgerEntry, decimal.Decimal, error)
	LockCustomer(customerID uuid.UUID) (unlock func())
}

// AdjustInput is a manual signed balance change. Negative amounts decrease
// debt (a payment), positive amounts increase it; this sign convention is
// enforced here as the engine's contract, not left to callers.
type AdjustInput struct {
	CustomerID uuid.UUID
	Amount     decimal.Decimal
	Reason     string
}

// AdjustResult carries the appended entry and the customer's new total.
type AdjustResult struct {
	Entry     *models.LedgerEntry
	TotalDebt decimal.Decimal
}

// OrderEntryInput is the debt effect of one order, appended inside the order
// creation transaction. The ledger never recomputes prices; it records the
// debt change it is handed.
type OrderEntryInput struct {
	CustomerID uuid.UUID
	OrderID    uuid.UUID
	DebtChange decimal.Decimal
}

type service struct {
	repo      Repository
	tx        txRunner
	customers customerStore
	locks     *keyedMutex
	metrics   appendObserver
}

// NewService wires a ledger service with the provided collaborators. metrics
// may be nil.
func NewService(repo Repository, tx txRunner, customers customerStore, metrics appendObserver) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer store required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		customers: customers,
		locks:     newKeyedMutex(),
		metrics:   metrics,
	}, nil
}

func (s *service) Adjust(ctx context.Context, input AdjustInput) (*AdjustResult, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment reason is required")
	}
	amount := input.Amount.Round(moneyPlaces)
	if amount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeNoOpAdjustment, "zero-amount adjustments are rejected")
	}

	unlock := s.locks.Lock(input.CustomerID)
	defer unlock()

	var result AdjustResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.customers.LockByID(ctx, tx, input.CustomerID); err != nil {
			return err
		}

		entry := &models.LedgerEntry{
			CustomerID: input.CustomerID,
			Source:     enums.LedgerSourceAdjustment,
			Amount:     amount,
			Reason:     strings.TrimSpace(input.Reason),
		}
		if err := s.repo.WithTx(tx).Create(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "appending ledger entry")
		}

		total, err := s.customers.AddToDebt(ctx, tx, input.CustomerID, amount)
		if err != nil {
			return err
		}

		result.Entry = entry
		result.TotalDebt = total
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveAppend(enums.LedgerSourceAdjustment.String())
	}
	return &result, nil
}

// AppendOrderEntry records an order's debt effect. It must be called inside
// the transaction that persists the order, with the customer lock already
// held via LockCustomer.
func (s *service) AppendOrderEntry(ctx context.Context, tx *gorm.DB, input OrderEntryInput) (*models.LedgerEntry, decimal.Decimal, error) {
	if tx == nil {
		return nil, decimal.Zero, fmt.Errorf("order entries require an open transaction")
	}
	if input.OrderID == uuid.Nil {
		return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	orderID := input.OrderID
	entry := &models.LedgerEntry{
		CustomerID:    input.CustomerID,
		Source:        enums.LedgerSourceOrder,
		Amount:        input.DebtChange.Round(moneyPlaces),
		Reason:        fmt.Sprintf("order %s", orderID),
		SourceOrderID: &orderID,
	}
	if err := s.repo.WithTx(tx).Create(ctx, entry); err != nil {
		return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "appending order ledger entry")
	}

	total, err := s.customers.AddToDebt(ctx, tx, input.CustomerID, entry.Amount)
	if err != nil {
		return nil, decimal.Zero, err
	}

	if s.metrics != nil {
		s.metrics.ObserveAppend(enums.LedgerSourceOrder.String())
	}
	return entry, total, nil
}

func (s *service) CurrentBalance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return decimal.Zero, err
	}
	return customer.TotalDebt, nil
}

func (s *service) Entries(ctx context.Context, customerID uuid.UUID, limit int) ([]models.LedgerEntry, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	return s.repo.ListByCustomer(ctx, customerID, limit)
}

func (s *service) EntriesPage(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.LedgerEntry, string, error) {
	if customerID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	entries, next, err := s.repo.ListPage(ctx, customerID, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing ledger entries")
	}
	return entries, next, nil
}

func (s *service) LockCustomer(customerID uuid.UUID) (unlock func()) {
	return s.locks.Lock(customerID)
}
