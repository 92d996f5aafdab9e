package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestIngredientComposition(t *testing.T) {
	line := IngredientLine{
		SupplierGoodID:   uuid.New(),
		MeasurementUnit:  "kg",
		RequiredQuantity: decimal.NewFromFloat(0.5),
	}

	t.Run("valid", func(t *testing.T) {
		comp, err := IngredientComposition([]IngredientLine{line})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if comp.Mode() != CompositionIngredients {
			t.Fatalf("expected ingredients mode, got %q", comp.Mode())
		}
		if len(comp.Ingredients()) != 1 {
			t.Fatalf("expected 1 line, got %d", len(comp.Ingredients()))
		}
		if comp.SetMenu() != nil {
			t.Fatal("ingredient composition must not carry set menu components")
		}
	})

	t.Run("empty lines", func(t *testing.T) {
		if _, err := IngredientComposition(nil); err == nil {
			t.Fatal("expected error for empty ingredient list")
		}
	})

	t.Run("missing supplier good id", func(t *testing.T) {
		bad := line
		bad.SupplierGoodID = uuid.Nil
		if _, err := IngredientComposition([]IngredientLine{bad}); err == nil {
			t.Fatal("expected error for nil supplier good id")
		}
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		bad := line
		bad.RequiredQuantity = decimal.Zero
		if _, err := IngredientComposition([]IngredientLine{bad}); err == nil {
			t.Fatal("expected error for zero required quantity")
		}
	})
}

func TestSetMenuComposition(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		ids := []uuid.UUID{uuid.New(), uuid.New()}
		comp, err := SetMenuComposition(ids)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if comp.Mode() != CompositionSetMenu {
			t.Fatalf("expected set menu mode, got %q", comp.Mode())
		}
		if len(comp.SetMenu()) != 2 {
			t.Fatalf("expected 2 components, got %d", len(comp.SetMenu()))
		}
		if comp.Ingredients() != nil {
			t.Fatal("set menu composition must not carry ingredient lines")
		}
	})

	t.Run("empty components", func(t *testing.T) {
		if _, err := SetMenuComposition(nil); err == nil {
			t.Fatal("expected error for empty component list")
		}
	})

	t.Run("nil component id", func(t *testing.T) {
		if _, err := SetMenuComposition([]uuid.UUID{uuid.Nil}); err == nil {
			t.Fatal("expected error for nil component id")
		}
	})
}

func TestComposition_ZeroValue(t *testing.T) {
	var comp Composition
	if !comp.IsZero() {
		t.Fatal("zero value composition should report IsZero")
	}
	if comp.Ingredients() != nil || comp.SetMenu() != nil {
		t.Fatal("zero value composition should carry no variant data")
	}
}

func TestRestoredComposition(t *testing.T) {
	lines := []IngredientLine{{
		SupplierGoodID:   uuid.New(),
		RequiredQuantity: decimal.NewFromInt(1),
	}}
	components := []uuid.UUID{uuid.New()}

	t.Run("restores only the stored variant", func(t *testing.T) {
		comp := RestoredComposition(CompositionIngredients, lines, components)
		if comp.Mode() != CompositionIngredients {
			t.Fatalf("expected ingredients mode, got %q", comp.Mode())
		}
		if comp.SetMenu() != nil {
			t.Fatal("restoring ingredients mode must drop set menu rows")
		}

		comp = RestoredComposition(CompositionSetMenu, lines, components)
		if comp.Ingredients() != nil {
			t.Fatal("restoring set menu mode must drop ingredient rows")
		}
	})

	t.Run("unknown mode restores zero value", func(t *testing.T) {
		comp := RestoredComposition("", lines, components)
		if !comp.IsZero() {
			t.Fatal("unknown mode should restore the zero value")
		}
	})
}
