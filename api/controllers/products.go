package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/abastecio/abastecio-backend/api/responses"
	"github.com/abastecio/abastecio-backend/api/validators"
	productsvc "github.com/abastecio/abastecio-backend/internal/products"
	pkgerrors "github.com/abastecio/abastecio-backend/pkg/errors"
	"github.com/abastecio/abastecio-backend/pkg/logger"
)

type productRequest struct {
	Name             string          `json:"name" validate:"required,min=1,max=200"`
	BaseBuyingPrice  decimal.Decimal `json:"baseBuyingPrice"`
	BaseSellingPrice decimal.Decimal `json:"baseSellingPrice"`
	DiscountPercent  decimal.Decimal `json:"discountPercent"`
	ImageKey         *string         `json:"imageKey,omitempty"`
	IsActive         *bool           `json:"isActive,omitempty"`
}

// CreateProduct handles catalog entry creation.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), productsvc.CreateInput{
			Name:             validators.SanitizeString(payload.Name, 200),
			BaseBuyingPrice:  payload.BaseBuyingPrice,
			BaseSellingPrice: payload.BaseSellingPrice,
			DiscountPercent:  payload.DiscountPercent,
			ImageKey:         payload.ImageKey,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// UpdateProduct handles catalog edits, including deactivation.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		isActive := true
		if payload.IsActive != nil {
			isActive = *payload.IsActive
		}

		product, err := svc.Update(r.Context(), id, productsvc.UpdateInput{
			Name:             validators.SanitizeString(payload.Name, 200),
			BaseBuyingPrice:  payload.BaseBuyingPrice,
			BaseSellingPrice: payload.BaseSellingPrice,
			DiscountPercent:  payload.DiscountPercent,
			ImageKey:         payload.ImageKey,
			IsActive:         isActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// GetProduct returns one catalog entry with its derived selling price.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ListProducts returns the catalog, hiding inactive entries unless asked.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeInactive, err := validators.ParseQueryBool(r, "include_inactive", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		search := validators.SanitizeString(r.URL.Query().Get("search"), 200)

		products, err := svc.List(r.Context(), search, includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").
			WithDetails(map[string]string{"param": name})
	}
	return id, nil
}
