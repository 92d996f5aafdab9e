package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Inventory is a stock-count snapshot for a business. At most one inventory
// per business is open (set_final_count = false) at a time; the database
// enforces this with a partial unique index.
type Inventory struct {
	ID            uuid.UUID
	BusinessID    uuid.UUID
	SetFinalCount bool
	CountedDate   *time.Time
	Goods         []*InventoryGood
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// InventoryGood is one supplier good tracked by a snapshot.
//
// CountAtOpen freezes the catalog's dynamic count at the moment the snapshot
// opened; DynamicSystemCount starts from it and moves only through atomic
// increments as purchases reconcile, so a recount can always be replayed from
// the purchase ledger.
type InventoryGood struct {
	ID                   uuid.UUID
	InventoryID          uuid.UUID
	SupplierGoodID       uuid.UUID
	MeasurementUnit      string
	CountAtOpen          decimal.Decimal
	DynamicSystemCount   decimal.Decimal
	CurrentCountQuantity *decimal.Decimal
	DeviationPercent     *decimal.Decimal
	CountedByUserID      *uuid.UUID
}

// NewInventory opens a fresh snapshot shell for the business.
func NewInventory(businessID uuid.UUID) (*Inventory, error) {
	if businessID == uuid.Nil {
		return nil, fmt.Errorf("business id must be set")
	}
	now := time.Now().UTC()
	return &Inventory{
		ID:         uuid.New(),
		BusinessID: businessID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// IsOpen reports whether the snapshot still accepts counts and reconciliation.
func (i *Inventory) IsOpen() bool {
	return !i.SetFinalCount
}

var hundred = decimal.NewFromInt(100)

// DeviationPercent computes the percentage deviation of a physical count from
// the system count: (counted − system) / system × 100. A zero system count
// with a nonzero physical count reads as full deviation.
func DeviationPercent(system, counted decimal.Decimal) decimal.Decimal {
	if system.IsZero() {
		if counted.IsZero() {
			return decimal.Zero
		}
		return hundred
	}
	return counted.Sub(system).Div(system).Mul(hundred)
}
