package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/abastecio/abastecio-backend/pkg/db/models"
	pkgerrors "github.com/abastecio/abastecio-backend/pkg/errors"
)

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", value, err)
	}
	return d
}

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		discount string
		want     string
	}{
		{name: "ten percent off", base: "15.00", discount: "10", want: "13.5"},
		{name: "no discount", base: "9.99", discount: "0", want: "9.99"},
		{name: "full discount", base: "120.00", discount: "100", want: "0"},
		{name: "rounds half up", base: "10.01", discount: "2.5", want: "9.76"},
		{name: "zero base", base: "0", discount: "50", want: "0"},
		{name: "fractional percent", base: "33.33", discount: "33.33", want: "22.22"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EffectivePrice(dec(t, tt.base), dec(t, tt.discount))
			if err != nil {
				t.Fatalf("EffectivePrice error: %v", err)
			}
			if !got.Equal(dec(t, tt.want)) {
				t.Fatalf("expected %s got %s", tt.want, got)
			}
			if got.IsNegative() || got.GreaterThan(dec(t, tt.base)) {
				t.Fatalf("result %s outside [0, %s]", got, tt.base)
			}
		})
	}
}

func TestEffectivePriceRejectsInvalidState(t *testing.T) {
	if _, err := EffectivePrice(dec(t, "-1.00"), dec(t, "10")); !pkgerrors.HasCode(err, pkgerrors.CodeInvalidProductState) {
		t.Fatalf("expected invalid product state for negative base, got %v", err)
	}
	if _, err := EffectivePrice(dec(t, "10.00"), dec(t, "-5")); !pkgerrors.HasCode(err, pkgerrors.CodeInvalidProductState) {
		t.Fatalf("expected invalid product state for negative discount, got %v", err)
	}
	if _, err := EffectivePrice(dec(t, "10.00"), dec(t, "100.01")); !pkgerrors.HasCode(err, pkgerrors.CodeInvalidProductState) {
		t.Fatalf("expected invalid product state for discount above 100, got %v", err)
	}
}

func TestResolveUnitPriceHonorsOverride(t *testing.T) {
	product := &models.Product{
		BaseSellingPrice: dec(t, "15.00"),
		DiscountPercent:  dec(t, "10"),
	}

	// Negotiated price wins verbatim, even above the catalog price.
	override := dec(t, "99.999")
	got, err := ResolveUnitPrice(product, &override)
	if err != nil {
		t.Fatalf("ResolveUnitPrice error: %v", err)
	}
	if !got.Equal(dec(t, "100.00")) {
		t.Fatalf("expected rounded override 100.00, got %s", got)
	}

	got, err = ResolveUnitPrice(product, nil)
	if err != nil {
		t.Fatalf("ResolveUnitPrice error: %v", err)
	}
	if !got.Equal(dec(t, "13.50")) {
		t.Fatalf("expected effective price 13.50, got %s", got)
	}
}

func TestResolveUnitPriceRequiresProductWithoutOverride(t *testing.T) {
	if _, err := ResolveUnitPrice(nil, nil); !pkgerrors.HasCode(err, pkgerrors.CodeInvalidProductState) {
		t.Fatalf("expected invalid product state, got %v", err)
	}
}

func TestResolveUnitPriceRejectsNegativeOverride(t *testing.T) {
	product := &models.Product{
		BaseSellingPrice: dec(t, "15.00"),
		DiscountPercent:  dec(t, "10"),
	}
	override := dec(t, "-5.00")

	if _, err := ResolveUnitPrice(product, &override); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for negative override, got %v", err)
	}
}
