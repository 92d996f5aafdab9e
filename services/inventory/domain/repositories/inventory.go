package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jpsm83/restaurant-pos/services/inventory/domain/models"
)

// QueryOpts carries pagination for list queries.
type QueryOpts struct {
	Limit  int
	Offset int
}

// ReconcileLine is one purchased quantity to fold into the open snapshot.
type ReconcileLine struct {
	SupplierGoodID uuid.UUID
	Quantity       decimal.Decimal
}

// CountRecord is a physical count for one snapshot line.
type CountRecord struct {
	SupplierGoodID   uuid.UUID
	CountedQuantity  decimal.Decimal
	DeviationPercent decimal.Decimal
	CountedByUserID  uuid.UUID
}

// InventoryRepository persists inventory snapshots.
type InventoryRepository interface {
	// Open creates a snapshot seeded with the business's in-use supplier
	// goods, freezing their current dynamic counts. Returns
	// ErrInventoryAlreadyOpen when the partial unique index trips.
	Open(ctx context.Context, inv *models.Inventory) error

	// GetOpen returns the business's open snapshot with its goods attached,
	// or ErrNoOpenInventory.
	GetOpen(ctx context.Context, businessID uuid.UUID) (*models.Inventory, error)

	// GetByID returns a snapshot with its goods attached, scoped to the business.
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Inventory, error)

	// FindByBusinessID lists snapshot headers (no goods) plus total count.
	FindByBusinessID(ctx context.Context, businessID uuid.UUID, opts QueryOpts) ([]*models.Inventory, int, error)

	// RecordCount stores a physical count on one open-snapshot line.
	RecordCount(ctx context.Context, businessID, inventoryID uuid.UUID, rec CountRecord) error

	// Finalize marks the snapshot terminal and, in the same transaction,
	// resets each supplier good's dynamic count to the counted quantity and
	// stamps its last inventory count date.
	Finalize(ctx context.Context, businessID, inventoryID uuid.UUID) (*models.Inventory, error)

	// IncrementSystemCounts applies one independent atomic increment of
	// dynamic_system_count per line and reports how many lines matched a
	// snapshot row. Lines for goods outside the snapshot match zero rows.
	IncrementSystemCounts(ctx context.Context, inventoryID uuid.UUID, lines []ReconcileLine) (matched int, err error)

	// RebuildSystemCounts recomputes every line's dynamic_system_count as
	// count_at_open plus the purchased quantities recorded since the
	// snapshot opened. Idempotent.
	RebuildSystemCounts(ctx context.Context, businessID, inventoryID uuid.UUID) error
}
