package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	purchasingdomain "github.com/jpsm83/restaurant-pos/services/purchasing/domain"
	"github.com/jpsm83/restaurant-pos/services/purchasing/domain/models"
)

func TestValidateItems(t *testing.T) {
	goodID := uuid.New()
	valid := models.PurchaseItem{
		SupplierGoodID:    &goodID,
		QuantityPurchased: decimal.NewFromInt(3),
		PurchasePrice:     decimal.NewFromFloat(9.99),
	}

	tests := []struct {
		name    string
		items   []models.PurchaseItem
		oneTime bool
		wantErr bool
	}{
		{"valid regular line", []models.PurchaseItem{valid}, false, false},
		{"empty items", nil, false, true},
		{
			"zero quantity",
			[]models.PurchaseItem{{SupplierGoodID: &goodID, QuantityPurchased: decimal.Zero, PurchasePrice: decimal.NewFromInt(1)}},
			false, true,
		},
		{
			"negative price",
			[]models.PurchaseItem{{SupplierGoodID: &goodID, QuantityPurchased: decimal.NewFromInt(1), PurchasePrice: decimal.NewFromInt(-1)}},
			false, true,
		},
		{
			"missing good on regular purchase",
			[]models.PurchaseItem{{QuantityPurchased: decimal.NewFromInt(1), PurchasePrice: decimal.NewFromInt(1)}},
			false, true,
		},
		{
			"missing good allowed on one-time purchase",
			[]models.PurchaseItem{{QuantityPurchased: decimal.NewFromInt(1), PurchasePrice: decimal.NewFromInt(1)}},
			true, false,
		},
		{
			"one bad line fails the batch",
			[]models.PurchaseItem{valid, {SupplierGoodID: &goodID, QuantityPurchased: decimal.NewFromInt(-2), PurchasePrice: decimal.NewFromInt(1)}},
			false, true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItems(tt.items, tt.oneTime)
			if tt.wantErr {
				if !errors.Is(err, purchasingdomain.ErrInvalidPurchase) {
					t.Fatalf("expected ErrInvalidPurchase, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
