package customers

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/abastecio/abastecio-backend/pkg/db/models"
	pkgerrors "github.com/abastecio/abastecio-backend/pkg/errors"
)

const detailActivityLimit = 20

// orderLister and entryLister are the slices of the order and ledger
// repositories the detail view needs.
type orderLister interface {
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.Order, error)
}

type entryLister interface {
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]models.LedgerEntry, error)
}

// Service exposes customer account management.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Customer, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, search string, includeInactive bool) ([]models.Customer, error)
	Detail(ctx context.Context, id uuid.UUID) (*Detail, error)
}

type service struct {
	repo    Repository
	orders  orderLister
	entries entryLister
}

// NewService wires the customer service. The order and entry listers may be
// nil when the detail view is not needed, e.g. in narrow tests.
func NewService(repo Repository, orders orderLister, entries entryLister) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "customers: repository is required")
	}
	return &service{repo: repo, orders: orders, entries: entries}, nil
}

// requiredFields trims and validates the identity fields every customer row
// must carry.
func requiredFields(name, location, phone string) (string, string, string, error) {
	name = strings.TrimSpace(name)
	location = strings.TrimSpace(location)
	phone = strings.TrimSpace(phone)
	switch {
	case name == "":
		return "", "", "", pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	case location == "":
		return "", "", "", pkgerrors.New(pkgerrors.CodeValidation, "customer location is required")
	case phone == "":
		return "", "", "", pkgerrors.New(pkgerrors.CodeValidation, "customer phone is required")
	}
	return name, location, phone, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Customer, error) {
	name, location, phone, err := requiredFields(input.Name, input.Location, input.Phone)
	if err != nil {
		return nil, err
	}

	customer := &models.Customer{
		Name:     name,
		Location: location,
		Phone:    phone,
		Email:    input.Email,
		Notes:    input.Notes,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating customer")
	}
	return customer, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, location, phone, err := requiredFields(input.Name, input.Location, input.Phone)
	if err != nil {
		return nil, err
	}

	customer.Name = name
	customer.Location = location
	customer.Phone = phone
	customer.Email = input.Email
	customer.Notes = input.Notes
	customer.IsActive = input.IsActive
	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "updating customer")
	}
	return customer, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context, search string, includeInactive bool) ([]models.Customer, error) {
	return s.repo.List(ctx, search, includeInactive)
}

func (s *service) Detail(ctx context.Context, id uuid.UUID) (*Detail, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &Detail{Customer: customer}
	if s.orders != nil {
		orders, err := s.orders.ListByCustomer(ctx, id, detailActivityLimit)
		if err != nil {
			return nil, err
		}
		detail.Orders = orders
	}
	if s.entries != nil {
		entries, err := s.entries.ListByCustomer(ctx, id, detailActivityLimit)
		if err != nil {
			return nil, err
		}
		detail.Entries = entries
	}
	return detail, nil
}
