package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierGood is a raw good purchased from a supplier: the procurement-side
// aggregate of the catalog. PricePerUnit is always derived from
// WholesalePrice / TotalQuantityPerUnit, never set directly.
//
// DynamicCountFromLastInventory is the running on-hand estimate, adjusted by
// order consumption (decrement) and reversed on cancellation. It is mutated
// only through atomic repository increments.
type SupplierGood struct {
	ID              uuid.UUID
	BusinessID      uuid.UUID // tenant scope — always filter by this in queries
	SupplierID      uuid.UUID
	Name            string
	MainCategory    string
	SubCategory     string
	MeasurementUnit string

	TotalQuantityPerUnit decimal.Decimal
	WholesalePrice       decimal.Decimal
	PricePerUnit         decimal.Decimal // derived

	ParLevel                decimal.Decimal
	MinimumQuantityRequired decimal.Decimal
	Allergens               Allergens
	CurrentlyInUse          bool

	DynamicCountFromLastInventory decimal.Decimal
	LastInventoryCountDate        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSupplierGood constructs a valid SupplierGood with a generated ID and the
// derived price per unit.
func NewSupplierGood(
	businessID, supplierID uuid.UUID,
	name, mainCategory, subCategory, measurementUnit string,
	totalQuantityPerUnit, wholesalePrice, parLevel, minimumQuantityRequired decimal.Decimal,
	allergens []string,
) (*SupplierGood, error) {
	if businessID == uuid.Nil || supplierID == uuid.Nil {
		return nil, fmt.Errorf("business and supplier ids must be set")
	}
	if name == "" {
		return nil, fmt.Errorf("supplier good name must not be empty")
	}
	if measurementUnit == "" {
		return nil, fmt.Errorf("measurement unit must not be empty")
	}
	if !totalQuantityPerUnit.IsPositive() {
		return nil, fmt.Errorf("total quantity per unit must be positive")
	}
	if !wholesalePrice.IsPositive() {
		return nil, fmt.Errorf("wholesale price must be positive")
	}

	now := time.Now().UTC()
	return &SupplierGood{
		ID:                            uuid.New(),
		BusinessID:                    businessID,
		SupplierID:                    supplierID,
		Name:                          name,
		MainCategory:                  mainCategory,
		SubCategory:                   subCategory,
		MeasurementUnit:               measurementUnit,
		TotalQuantityPerUnit:          totalQuantityPerUnit,
		WholesalePrice:                wholesalePrice,
		PricePerUnit:                  PricePerUnit(wholesalePrice, totalQuantityPerUnit),
		ParLevel:                      parLevel,
		MinimumQuantityRequired:       minimumQuantityRequired,
		Allergens:                     UnionAllergens(allergens),
		CurrentlyInUse:                true,
		DynamicCountFromLastInventory: decimal.Zero,
		CreatedAt:                     now,
		UpdatedAt:                     now,
	}, nil
}

// PricePerUnit derives the unit cost from the wholesale price and the
// quantity a wholesale unit contains. Zero quantity yields zero rather than
// dividing by zero; constructors reject that case before it gets here.
func PricePerUnit(wholesalePrice, totalQuantityPerUnit decimal.Decimal) decimal.Decimal {
	if totalQuantityPerUnit.IsZero() {
		return decimal.Zero
	}
	return wholesalePrice.Div(totalQuantityPerUnit)
}

// Reprice applies new wholesale pricing and recomputes the derived unit price.
func (g *SupplierGood) Reprice(wholesalePrice, totalQuantityPerUnit decimal.Decimal) error {
	if !totalQuantityPerUnit.IsPositive() {
		return fmt.Errorf("total quantity per unit must be positive")
	}
	if !wholesalePrice.IsPositive() {
		return fmt.Errorf("wholesale price must be positive")
	}
	g.WholesalePrice = wholesalePrice
	g.TotalQuantityPerUnit = totalQuantityPerUnit
	g.PricePerUnit = PricePerUnit(wholesalePrice, totalQuantityPerUnit)
	g.UpdatedAt = time.Now().UTC()
	return nil
}
