package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jpsm83/restaurant-pos/services/catalog/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // Maximum number of records to return
	Offset int // Number of records to skip
}

// CountDelta is one signed adjustment to a supplier good's dynamic count.
type CountDelta struct {
	SupplierGoodID uuid.UUID
	Delta          decimal.Decimal
}

// SupplierGoodRepository is the persistence interface for the SupplierGood
// aggregate. The domain layer owns this interface; infrastructure implements it.
type SupplierGoodRepository interface {
	Save(ctx context.Context, good *models.SupplierGood) error
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.SupplierGood, error)

	// GetManyByIDs fetches the record set the ingredient resolver works over,
	// scoped to one business. Missing IDs are simply absent from the map.
	GetManyByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*models.SupplierGood, error)

	FindByBusinessID(ctx context.Context, businessID uuid.UUID, opts QueryOpts) ([]*models.SupplierGood, int, error)
	Update(ctx context.Context, good *models.SupplierGood) error

	// Delete removes a supplier good. Returns ErrGoodInUse when ingredient
	// lists or purchase lines still reference it.
	Delete(ctx context.Context, businessID, id uuid.UUID) error

	// AdjustDynamicCounts applies each delta as an independent atomic
	// SET count = count + delta statement (never read-modify-write) and
	// returns how many rows matched. Partial success is expected.
	AdjustDynamicCounts(ctx context.Context, businessID uuid.UUID, deltas []CountDelta) (int, error)
}

// BusinessGoodRepository is the persistence interface for the BusinessGood
// aggregate, composition rows included.
type BusinessGoodRepository interface {
	Save(ctx context.Context, good *models.BusinessGood) error
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.BusinessGood, error)

	// GetManyByIDs loads component goods for set-menu costing and order stock
	// mutation, compositions included.
	GetManyByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*models.BusinessGood, error)

	FindByBusinessID(ctx context.Context, businessID uuid.UUID, opts QueryOpts) ([]*models.BusinessGood, int, error)

	// Update persists the good and replaces its composition rows, clearing
	// the rows of the previous mode when the mode switched.
	Update(ctx context.Context, good *models.BusinessGood) error

	// Delete removes a business good. Returns ErrGoodInUse when open orders
	// or set menus still reference it.
	Delete(ctx context.Context, businessID, id uuid.UUID) error
}
