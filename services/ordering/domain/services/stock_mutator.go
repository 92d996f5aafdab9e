package services

import (
	"fmt"

	"github.com/google/uuid"

	catalogmodels "github.com/jpsm83/restaurant-pos/services/catalog/domain/models"
	catalogrepos "github.com/jpsm83/restaurant-pos/services/catalog/domain/repositories"
	orderingdomain "github.com/jpsm83/restaurant-pos/services/ordering/domain"
)

// MutationDirection says which way an order moves supplier-good stock.
type MutationDirection string

const (
	// DirectionAdd applies an order: ingredient consumption decrements the
	// dynamic counts.
	DirectionAdd MutationDirection = "add"
	// DirectionRemove reverses a voided order: the same quantities flow back.
	DirectionRemove MutationDirection = "remove"
)

// StockDeltas expands the ordered business goods into signed per-supplier-good
// deltas for the catalog's atomic increment primitive.
//
// Ingredient-based goods contribute their lines directly; set menus expand one
// level into their components' lines (components must be in the goods map).
// Quantities for the same supplier good are summed so each good gets exactly
// one delta.
func StockDeltas(
	goods map[uuid.UUID]*catalogmodels.BusinessGood,
	orderedIDs []uuid.UUID,
	direction MutationDirection,
) ([]catalogrepos.CountDelta, error) {
	totals := make(map[uuid.UUID]int)
	var deltas []catalogrepos.CountDelta

	accumulate := func(line catalogmodels.IngredientLine) {
		qty := line.RequiredQuantity
		if direction == DirectionAdd {
			qty = qty.Neg()
		}
		if idx, seen := totals[line.SupplierGoodID]; seen {
			deltas[idx].Delta = deltas[idx].Delta.Add(qty)
			return
		}
		totals[line.SupplierGoodID] = len(deltas)
		deltas = append(deltas, catalogrepos.CountDelta{
			SupplierGoodID: line.SupplierGoodID,
			Delta:          qty,
		})
	}

	for _, id := range orderedIDs {
		good, ok := goods[id]
		if !ok {
			return nil, fmt.Errorf("%w: business good %s not found", orderingdomain.ErrInvalidOrder, id)
		}

		switch good.Composition.Mode() {
		case catalogmodels.CompositionIngredients:
			for _, line := range good.Composition.Ingredients() {
				accumulate(line)
			}
		case catalogmodels.CompositionSetMenu:
			for _, componentID := range good.Composition.SetMenu() {
				component, ok := goods[componentID]
				if !ok {
					return nil, fmt.Errorf("%w: set menu component %s not found", orderingdomain.ErrInvalidOrder, componentID)
				}
				for _, line := range component.Composition.Ingredients() {
					accumulate(line)
				}
			}
		default:
			return nil, fmt.Errorf("%w: business good %s has no composition", orderingdomain.ErrInvalidOrder, id)
		}
	}
	return deltas, nil
}
