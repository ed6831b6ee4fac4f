package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/abastecio/abastecio-backend/api/responses"
	"github.com/abastecio/abastecio-backend/api/validators"
	ordersvc "github.com/abastecio/abastecio-backend/internal/orders"
	pkgerrors "github.com/abastecio/abastecio-backend/pkg/errors"
	"github.com/abastecio/abastecio-backend/pkg/logger"
)

type orderItemRequest struct {
	ProductID string           `json:"productId" validate:"required,uuid4"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
}

type recordOrderRequest struct {
	ID         *string            `json:"id,omitempty" validate:"omitempty,uuid4"`
	CustomerID string             `json:"customerId" validate:"required,uuid4"`
	OrderDate  *time.Time         `json:"orderDate,omitempty"`
	Items      []orderItemRequest `json:"items" validate:"required,dive"`
	Discount   decimal.Decimal    `json:"discount"`
	PaidNow    decimal.Decimal    `json:"paidNow"`
	Notes      *string            `json:"notes,omitempty"`
}

func (r recordOrderRequest) toInput() (ordersvc.RecordInput, error) {
	customerID, err := uuid.Parse(r.CustomerID)
	if err != nil {
		return ordersvc.RecordInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id")
	}

	input := ordersvc.RecordInput{
		CustomerID: customerID,
		Discount:   r.Discount,
		PaidNow:    r.PaidNow,
		Notes:      r.Notes,
	}

	if r.ID != nil {
		id, err := uuid.Parse(*r.ID)
		if err != nil {
			return ordersvc.RecordInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
		}
		input.ID = id
	}
	if r.OrderDate != nil {
		input.OrderDate = *r.OrderDate
	}

	for _, item := range r.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return ordersvc.RecordInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		input.Items = append(input.Items, ordersvc.ItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return input, nil
}

// RecordOrder freezes prices and books the order together with its debt effect.
func RecordOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload recordOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Record(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"order":     result.Order,
			"totalDebt": result.TotalDebt,
		})
	}
}

// GetOrder returns one order with its frozen line items.
func GetOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// ListCustomerOrders returns a customer's order history, newest first.
func ListCustomerOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.ListByCustomer(r.Context(), id, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orders)
	}
}
