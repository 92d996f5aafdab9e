// Package services contains stateless domain services for the catalog bounded
// context. They operate purely on domain types over pre-fetched record sets
// and never touch persistence.
package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogdomain "github.com/jpsm83/restaurant-pos/services/catalog/domain"
	"github.com/jpsm83/restaurant-pos/services/catalog/domain/models"
)

// SupplierGoodSet is the record set the ingredient resolver works over,
// keyed by supplier good ID. Callers fetch it scoped to one business.
type SupplierGoodSet map[uuid.UUID]*models.SupplierGood

// ResolveIngredient looks up the unit cost and allergen tags of a supplier
// good within the given business. Returns ErrSupplierGoodNotFound when the
// reference does not resolve inside the same business.
func ResolveIngredient(set SupplierGoodSet, businessID, supplierGoodID uuid.UUID) (decimal.Decimal, models.Allergens, error) {
	good, ok := set[supplierGoodID]
	if !ok || good.BusinessID != businessID {
		return decimal.Decimal{}, nil, fmt.Errorf("%w: %s", catalogdomain.ErrSupplierGoodNotFound, supplierGoodID)
	}
	return good.PricePerUnit, good.Allergens, nil
}

// Derivation is the cost calculator output applied onto a business good.
type Derivation struct {
	Composition models.Composition
	CostPrice   decimal.Decimal
	Allergens   models.Allergens
}

// CostIngredients computes the derived cost price and allergen union for an
// ingredient-based good:
//
//	costOfRequiredQuantity_i = pricePerUnit_i × requiredQuantity_i
//	costPrice                = Σ costOfRequiredQuantity_i
//	allergens                = dedup union of each ingredient's tags
//
// Any line referencing a missing or cross-business supplier good fails the
// whole derivation.
func CostIngredients(set SupplierGoodSet, businessID uuid.UUID, lines []models.IngredientLine) (Derivation, error) {
	costed := make([]models.IngredientLine, len(lines))
	total := decimal.Zero
	allergenLists := make([][]string, 0, len(lines))

	for i, line := range lines {
		unitCost, allergens, err := ResolveIngredient(set, businessID, line.SupplierGoodID)
		if err != nil {
			return Derivation{}, err
		}
		line.CostOfRequiredQuantity = unitCost.Mul(line.RequiredQuantity)
		costed[i] = line
		total = total.Add(line.CostOfRequiredQuantity)
		allergenLists = append(allergenLists, allergens)
	}

	comp, err := models.IngredientComposition(costed)
	if err != nil {
		return Derivation{}, fmt.Errorf("%w: %v", catalogdomain.ErrInvalidComposition, err)
	}

	return Derivation{
		Composition: comp,
		CostPrice:   total,
		Allergens:   models.UnionAllergens(allergenLists...),
	}, nil
}

// CostSetMenu computes the derived cost price and allergen union for a
// set-menu good from its component goods' already-derived values:
//
//	costPrice = Σ component costPrice
//	allergens = dedup union of component allergens
//
// Nesting is capped at one level: every component must itself be a leaf,
// ingredient-based good. A set-menu component fails with ErrNestedSetMenu so
// stale derived values can never propagate through a second level.
func CostSetMenu(components []*models.BusinessGood) (Derivation, error) {
	if len(components) == 0 {
		return Derivation{}, fmt.Errorf("%w: set menu must not be empty", catalogdomain.ErrInvalidComposition)
	}

	ids := make([]uuid.UUID, len(components))
	total := decimal.Zero
	allergenLists := make([][]string, 0, len(components))

	for i, component := range components {
		if component.IsSetMenu() {
			return Derivation{}, fmt.Errorf("%w: %s", catalogdomain.ErrNestedSetMenu, component.Name)
		}
		ids[i] = component.ID
		total = total.Add(component.CostPrice)
		allergenLists = append(allergenLists, component.Allergens)
	}

	comp, err := models.SetMenuComposition(ids)
	if err != nil {
		return Derivation{}, fmt.Errorf("%w: %v", catalogdomain.ErrInvalidComposition, err)
	}

	return Derivation{
		Composition: comp,
		CostPrice:   total,
		Allergens:   models.UnionAllergens(allergenLists...),
	}, nil
}
