package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/abastecio/abastecio-backend/api/responses"
	"github.com/abastecio/abastecio-backend/api/validators"
	customersvc "github.com/abastecio/abastecio-backend/internal/customers"
	ledgersvc "github.com/abastecio/abastecio-backend/internal/ledger"
	"github.com/abastecio/abastecio-backend/pkg/logger"
	"github.com/abastecio/abastecio-backend/pkg/pagination"
)

// customerRequest deliberately has no debt field. Debt only moves through
// orders and ledger adjustments; the strict decoder rejects attempts to
// write it directly.
type customerRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=200"`
	Location string  `json:"location" validate:"required,min=1,max=200"`
	Phone    string  `json:"phone" validate:"required,min=1,max=40"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Notes    *string `json:"notes,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

type adjustmentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason" validate:"required,min=1,max=500"`
}

// CreateCustomer registers a new customer account.
func CreateCustomer(svc customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload customerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.Create(r.Context(), customersvc.CreateInput{
			Name:     validators.SanitizeString(payload.Name, 200),
			Location: validators.SanitizeString(payload.Location, 200),
			Phone:    validators.SanitizeString(payload.Phone, 40),
			Email:    payload.Email,
			Notes:    payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, customer)
	}
}

// UpdateCustomer edits profile fields, including deactivation.
func UpdateCustomer(svc customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload customerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		isActive := true
		if payload.IsActive != nil {
			isActive = *payload.IsActive
		}

		customer, err := svc.Update(r.Context(), id, customersvc.UpdateInput{
			Name:     validators.SanitizeString(payload.Name, 200),
			Location: validators.SanitizeString(payload.Location, 200),
			Phone:    validators.SanitizeString(payload.Phone, 40),
			Email:    payload.Email,
			Notes:    payload.Notes,
			IsActive: isActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, customer)
	}
}

// ListCustomers returns customer summaries, hiding inactive accounts unless asked.
func ListCustomers(svc customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeInactive, err := validators.ParseQueryBool(r, "include_inactive", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		search := validators.SanitizeString(r.URL.Query().Get("search"), 200)

		customers, err := svc.List(r.Context(), search, includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summaries := make([]customersvc.Summary, 0, len(customers))
		for i := range customers {
			summaries = append(summaries, customersvc.ToSummary(&customers[i]))
		}
		responses.WriteSuccess(w, summaries)
	}
}

// GetCustomerDetail returns the customer with recent orders and ledger activity.
func GetCustomerDetail(svc customersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Detail(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"customer": detail.Customer,
			"orders":   detail.Orders,
			"ledger":   detail.Entries,
		})
	}
}

// AdjustCustomerDebt appends a manual signed ledger entry.
func AdjustCustomerDebt(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Adjust(r.Context(), ledgersvc.AdjustInput{
			CustomerID: id,
			Amount:     payload.Amount,
			Reason:     validators.SanitizeString(payload.Reason, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"entry":     result.Entry,
			"totalDebt": result.TotalDebt,
		})
	}
}

// ListCustomerLedger returns the customer's ledger history, newest first.
func ListCustomerLedger(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "customerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, nextCursor, err := svc.EntriesPage(r.Context(), id, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.CurrentBalance(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"entries":    entries,
			"totalDebt":  balance,
			"nextCursor": nextCursor,
		})
	}
}
