package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestNewInventory(t *testing.T) {
	inv, err := NewInventory(uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inv.IsOpen() {
		t.Fatal("new inventories open")
	}
	if inv.CountedDate != nil {
		t.Fatal("new inventories carry no counted date")
	}

	if _, err := NewInventory(uuid.Nil); err == nil {
		t.Fatal("expected error for nil business id")
	}
}

func TestInventory_IsOpen(t *testing.T) {
	inv := &Inventory{SetFinalCount: false}
	if !inv.IsOpen() {
		t.Fatal("expected open")
	}
	inv.SetFinalCount = true
	if inv.IsOpen() {
		t.Fatal("expected finalized")
	}
}

func TestDeviationPercent(t *testing.T) {
	tests := []struct {
		name    string
		system  decimal.Decimal
		counted decimal.Decimal
		want    decimal.Decimal
	}{
		{"exact count", decimal.NewFromInt(10), decimal.NewFromInt(10), decimal.Zero},
		{"shortage", decimal.NewFromInt(10), decimal.NewFromInt(8), decimal.NewFromInt(-20)},
		{"overage", decimal.NewFromInt(10), decimal.NewFromInt(15), decimal.NewFromInt(50)},
		{"zero system, zero counted", decimal.Zero, decimal.Zero, decimal.Zero},
		{"zero system, nonzero counted", decimal.Zero, decimal.NewFromInt(3), decimal.NewFromInt(100)},
		{"fractional", decimal.NewFromInt(8), decimal.NewFromInt(10), decimal.NewFromInt(25)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeviationPercent(tt.system, tt.counted)
			if !got.Equal(tt.want) {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
