package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogmodels "github.com/jpsm83/restaurant-pos/services/catalog/domain/models"
	orderingdomain "github.com/jpsm83/restaurant-pos/services/ordering/domain"
)

func ingredientGood(t *testing.T, lines ...catalogmodels.IngredientLine) *catalogmodels.BusinessGood {
	t.Helper()
	comp, err := catalogmodels.IngredientComposition(lines)
	if err != nil {
		t.Fatalf("build composition: %v", err)
	}
	return &catalogmodels.BusinessGood{ID: uuid.New(), Composition: comp}
}

func setMenuGood(t *testing.T, componentIDs ...uuid.UUID) *catalogmodels.BusinessGood {
	t.Helper()
	comp, err := catalogmodels.SetMenuComposition(componentIDs)
	if err != nil {
		t.Fatalf("build composition: %v", err)
	}
	return &catalogmodels.BusinessGood{ID: uuid.New(), Composition: comp}
}

func line(goodID uuid.UUID, qty int64) catalogmodels.IngredientLine {
	return catalogmodels.IngredientLine{
		SupplierGoodID:   goodID,
		RequiredQuantity: decimal.NewFromInt(qty),
	}
}

func TestStockDeltas(t *testing.T) {
	flour := uuid.New()
	milk := uuid.New()

	t.Run("add direction negates ingredient quantities", func(t *testing.T) {
		good := ingredientGood(t, line(flour, 2), line(milk, 1))
		goods := map[uuid.UUID]*catalogmodels.BusinessGood{good.ID: good}

		deltas, err := StockDeltas(goods, []uuid.UUID{good.ID}, DirectionAdd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(deltas) != 2 {
			t.Fatalf("expected 2 deltas, got %d", len(deltas))
		}
		if deltas[0].SupplierGoodID != flour || !deltas[0].Delta.Equal(decimal.NewFromInt(-2)) {
			t.Fatalf("expected flour -2, got %s %s", deltas[0].SupplierGoodID, deltas[0].Delta)
		}
		if deltas[1].SupplierGoodID != milk || !deltas[1].Delta.Equal(decimal.NewFromInt(-1)) {
			t.Fatalf("expected milk -1, got %s %s", deltas[1].SupplierGoodID, deltas[1].Delta)
		}
	})

	t.Run("remove direction reverses the same quantities", func(t *testing.T) {
		good := ingredientGood(t, line(flour, 2))
		goods := map[uuid.UUID]*catalogmodels.BusinessGood{good.ID: good}

		deltas, err := StockDeltas(goods, []uuid.UUID{good.ID}, DirectionRemove)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !deltas[0].Delta.Equal(decimal.NewFromInt(2)) {
			t.Fatalf("expected +2 on void reversal, got %s", deltas[0].Delta)
		}
	})

	t.Run("shared supplier good accumulates into one delta", func(t *testing.T) {
		coffee := ingredientGood(t, line(milk, 1))
		latte := ingredientGood(t, line(milk, 3))
		goods := map[uuid.UUID]*catalogmodels.BusinessGood{coffee.ID: coffee, latte.ID: latte}

		deltas, err := StockDeltas(goods, []uuid.UUID{coffee.ID, latte.ID}, DirectionAdd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(deltas) != 1 {
			t.Fatalf("expected a single accumulated delta, got %d", len(deltas))
		}
		if !deltas[0].Delta.Equal(decimal.NewFromInt(-4)) {
			t.Fatalf("expected -4, got %s", deltas[0].Delta)
		}
	})

	t.Run("set menu expands one level into component ingredients", func(t *testing.T) {
		starter := ingredientGood(t, line(flour, 1))
		main := ingredientGood(t, line(flour, 2), line(milk, 1))
		menu := setMenuGood(t, starter.ID, main.ID)
		goods := map[uuid.UUID]*catalogmodels.BusinessGood{
			starter.ID: starter,
			main.ID:    main,
			menu.ID:    menu,
		}

		deltas, err := StockDeltas(goods, []uuid.UUID{menu.ID}, DirectionAdd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(deltas) != 2 {
			t.Fatalf("expected 2 deltas, got %d", len(deltas))
		}
		if !deltas[0].Delta.Equal(decimal.NewFromInt(-3)) {
			t.Fatalf("expected flour -3 across components, got %s", deltas[0].Delta)
		}
		if !deltas[1].Delta.Equal(decimal.NewFromInt(-1)) {
			t.Fatalf("expected milk -1, got %s", deltas[1].Delta)
		}
	})

	t.Run("unknown ordered good", func(t *testing.T) {
		_, err := StockDeltas(map[uuid.UUID]*catalogmodels.BusinessGood{}, []uuid.UUID{uuid.New()}, DirectionAdd)
		if !errors.Is(err, orderingdomain.ErrInvalidOrder) {
			t.Fatalf("expected ErrInvalidOrder, got %v", err)
		}
	})

	t.Run("missing set menu component", func(t *testing.T) {
		menu := setMenuGood(t, uuid.New())
		goods := map[uuid.UUID]*catalogmodels.BusinessGood{menu.ID: menu}

		_, err := StockDeltas(goods, []uuid.UUID{menu.ID}, DirectionAdd)
		if !errors.Is(err, orderingdomain.ErrInvalidOrder) {
			t.Fatalf("expected ErrInvalidOrder, got %v", err)
		}
	})

	t.Run("good without composition", func(t *testing.T) {
		bare := &catalogmodels.BusinessGood{ID: uuid.New()}
		goods := map[uuid.UUID]*catalogmodels.BusinessGood{bare.ID: bare}

		_, err := StockDeltas(goods, []uuid.UUID{bare.ID}, DirectionAdd)
		if !errors.Is(err, orderingdomain.ErrInvalidOrder) {
			t.Fatalf("expected ErrInvalidOrder, got %v", err)
		}
	})
}
