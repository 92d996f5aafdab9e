package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jpsm83/restaurant-pos/services/purchasing/domain/models"
)

// QueryOpts carries pagination for list queries.
type QueryOpts struct {
	Limit  int
	Offset int
}

// DateRange filters purchases by purchase date. Zero bounds are open ends.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// SupplierRepository persists suppliers.
type SupplierRepository interface {
	// Save inserts a supplier. Duplicate trade name within the business →
	// ErrSupplierAlreadyExists.
	Save(ctx context.Context, s *models.Supplier) error

	// GetByID returns a supplier scoped to the business.
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Supplier, error)

	// FindByBusinessID lists suppliers plus total count.
	FindByBusinessID(ctx context.Context, businessID uuid.UUID, opts QueryOpts) ([]*models.Supplier, int, error)

	// EnsureOneTimeSupplier returns the business's sentinel one-time-purchase
	// supplier, creating it on first use. Concurrent first calls converge on
	// one row.
	EnsureOneTimeSupplier(ctx context.Context, businessID uuid.UUID) (*models.Supplier, error)
}

// PurchaseRepository persists purchases. The ledger is append-only: there is
// deliberately no update or delete.
type PurchaseRepository interface {
	// Save inserts the purchase and its items in one transaction and
	// publishes purchase.created through the outbox in the same transaction.
	// Duplicate (business, supplier, receipt) → ErrDuplicateReceipt.
	Save(ctx context.Context, p *models.Purchase) error

	// GetByID returns a purchase with its items, scoped to the business.
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Purchase, error)

	// FindByBusinessID lists purchases newest-first, optionally filtered by
	// purchase-date range, plus total count under the same filter.
	FindByBusinessID(ctx context.Context, businessID uuid.UUID, dr DateRange, opts QueryOpts) ([]*models.Purchase, int, error)
}
