// Package pricing turns a product's base attributes into the price charged on
// an order line. Everything here is pure: no storage, no clock, no locks.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/abastecio/abastecio-backend/pkg/db/models"
	pkgerrors "github.com/abastecio/abastecio-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// MoneyPlaces is the scale used for every stored monetary value.
const MoneyPlaces = 2

// EffectivePrice applies the percentage discount to the base selling price and
// rounds half-up to money precision. The result is always within
// [0, baseSellingPrice].
func EffectivePrice(baseSellingPrice, discountPercent decimal.Decimal) (decimal.Decimal, error) {
	if baseSellingPrice.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeInvalidProductState, "base selling price cannot be negative").
			WithDetails(map[string]string{"base_selling_price": baseSellingPrice.String()})
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(hundred) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeInvalidProductState, "discount percent must be between 0 and 100").
			WithDetails(map[string]string{"discount_percent": discountPercent.String()})
	}

	factor := decimal.NewFromInt(1).Sub(discountPercent.Div(hundred))
	return baseSellingPrice.Mul(factor).Round(MoneyPlaces), nil
}

// EffectiveProductPrice is EffectivePrice over a product snapshot.
func EffectiveProductPrice(product *models.Product) (decimal.Decimal, error) {
	if product == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeInvalidProductState, "product snapshot required")
	}
	price, err := EffectivePrice(product.BaseSellingPrice, product.DiscountPercent)
	if err != nil {
		return decimal.Zero, fmt.Errorf("product %s: %w", product.ID, err)
	}
	return price, nil
}

// ResolveUnitPrice picks the price for one order line. An explicit override is
// a negotiated price and is used verbatim, never validated against the
// catalog, though it must not be negative; otherwise the product's effective
// price applies.
func ResolveUnitPrice(product *models.Product, override *decimal.Decimal) (decimal.Decimal, error) {
	if override != nil {
		if override.IsNegative() {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "negotiated unit price cannot be negative").
				WithDetails(map[string]string{"unit_price": override.String()})
		}
		return override.Round(MoneyPlaces), nil
	}
	return EffectiveProductPrice(product)
}
