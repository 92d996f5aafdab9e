package models

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompositionMode discriminates how a business good derives its cost and
// allergens.
type CompositionMode string

const (
	// CompositionIngredients — cost derives from raw supplier-good ingredients.
	CompositionIngredients CompositionMode = "ingredients"
	// CompositionSetMenu — cost derives from other (leaf) business goods.
	CompositionSetMenu CompositionMode = "set_menu"
)

// IngredientLine is one (supplier good, required quantity) pair of an
// ingredient-based good. CostOfRequiredQuantity is derived by the cost
// calculator, never client-supplied.
type IngredientLine struct {
	SupplierGoodID         uuid.UUID
	MeasurementUnit        string
	RequiredQuantity       decimal.Decimal
	CostOfRequiredQuantity decimal.Decimal // derived
}

// Composition is the tagged union of the two mutually exclusive composition
// modes. The variant fields are unexported so a Composition can only be built
// through the constructors, which makes "both modes set" unrepresentable.
type Composition struct {
	mode        CompositionMode
	ingredients []IngredientLine
	setMenu     []uuid.UUID
}

// IngredientComposition builds the ingredient-mode variant. Each line must
// reference a supplier good and carry a positive required quantity.
func IngredientComposition(lines []IngredientLine) (Composition, error) {
	if len(lines) == 0 {
		return Composition{}, fmt.Errorf("ingredients must not be empty")
	}
	for i, line := range lines {
		if line.SupplierGoodID == uuid.Nil {
			return Composition{}, fmt.Errorf("ingredient %d: supplier good id must be set", i)
		}
		if !line.RequiredQuantity.IsPositive() {
			return Composition{}, fmt.Errorf("ingredient %d: required quantity must be positive", i)
		}
	}
	return Composition{mode: CompositionIngredients, ingredients: lines}, nil
}

// SetMenuComposition builds the set-menu variant from component good IDs.
func SetMenuComposition(componentIDs []uuid.UUID) (Composition, error) {
	if len(componentIDs) == 0 {
		return Composition{}, fmt.Errorf("set menu must not be empty")
	}
	for i, id := range componentIDs {
		if id == uuid.Nil {
			return Composition{}, fmt.Errorf("set menu component %d: id must be set", i)
		}
	}
	return Composition{mode: CompositionSetMenu, setMenu: componentIDs}, nil
}

// Mode returns the active variant tag.
func (c Composition) Mode() CompositionMode {
	return c.mode
}

// Ingredients returns the ingredient lines; nil unless Mode() is
// CompositionIngredients.
func (c Composition) Ingredients() []IngredientLine {
	return c.ingredients
}

// SetMenu returns the component good IDs; nil unless Mode() is
// CompositionSetMenu.
func (c Composition) SetMenu() []uuid.UUID {
	return c.setMenu
}

// IsZero reports whether neither variant is set.
func (c Composition) IsZero() bool {
	return c.mode == ""
}

// RestoredComposition rebuilds a Composition from persisted rows. Storage is
// trusted to hold exactly one variant (the repository writes through the
// constructors and the schema keeps a mode column).
func RestoredComposition(mode CompositionMode, lines []IngredientLine, setMenu []uuid.UUID) Composition {
	switch mode {
	case CompositionIngredients:
		return Composition{mode: mode, ingredients: lines}
	case CompositionSetMenu:
		return Composition{mode: mode, setMenu: setMenu}
	default:
		return Composition{}
	}
}
