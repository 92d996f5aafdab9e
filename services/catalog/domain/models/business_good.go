package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BusinessGood is a sellable good: the menu-side aggregate of the catalog.
// CostPrice and Allergens are always derived from the composition by the cost
// calculator; clients never supply them.
type BusinessGood struct {
	ID           uuid.UUID
	BusinessID   uuid.UUID // tenant scope — always filter by this in queries
	Name         string
	Keyword      string
	MainCategory string
	SubCategory  string
	OnMenu       bool
	Available    bool

	SellingPrice decimal.Decimal
	CostPrice    decimal.Decimal // derived
	Allergens    Allergens       // derived

	Composition Composition

	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBusinessGood constructs a BusinessGood shell with a generated ID. The
// derived cost price and allergens are filled in by the cost calculator
// before the good is persisted.
func NewBusinessGood(
	businessID uuid.UUID,
	name, keyword, mainCategory, subCategory string,
	sellingPrice decimal.Decimal,
	onMenu, available bool,
	description string,
) (*BusinessGood, error) {
	if businessID == uuid.Nil {
		return nil, fmt.Errorf("business id must be set")
	}
	if name == "" {
		return nil, fmt.Errorf("business good name must not be empty")
	}
	if !sellingPrice.IsPositive() {
		return nil, fmt.Errorf("selling price must be positive")
	}

	now := time.Now().UTC()
	return &BusinessGood{
		ID:           uuid.New(),
		BusinessID:   businessID,
		Name:         name,
		Keyword:      keyword,
		MainCategory: mainCategory,
		SubCategory:  subCategory,
		OnMenu:       onMenu,
		Available:    available,
		SellingPrice: sellingPrice,
		Allergens:    Allergens{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ApplyDerivation writes the calculator output onto the good. Switching
// composition mode implicitly clears the previous variant because the tagged
// union holds only one.
func (g *BusinessGood) ApplyDerivation(comp Composition, costPrice decimal.Decimal, allergens Allergens) {
	g.Composition = comp
	g.CostPrice = costPrice
	if allergens == nil {
		allergens = Allergens{}
	}
	g.Allergens = allergens
	g.UpdatedAt = time.Now().UTC()
}

// IsSetMenu reports whether the good derives from other goods.
func (g *BusinessGood) IsSetMenu() bool {
	return g.Composition.Mode() == CompositionSetMenu
}
