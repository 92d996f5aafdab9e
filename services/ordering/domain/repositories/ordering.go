package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/jpsm83/restaurant-pos/services/ordering/domain/models"
)

// QueryOpts carries pagination for list queries.
type QueryOpts struct {
	Limit  int
	Offset int
}

// SalesInstanceRepository persists tables/tabs.
type SalesInstanceRepository interface {
	// Save inserts a sales instance.
	Save(ctx context.Context, s *models.SalesInstance) error

	// GetByID returns a sales instance scoped to the business.
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.SalesInstance, error)

	// FindByBusinessID lists sales instances newest-first plus total count.
	FindByBusinessID(ctx context.Context, businessID uuid.UUID, opts QueryOpts) ([]*models.SalesInstance, int, error)

	// Close marks the instance closed. Fails with
	// ErrSalesInstanceHasOpenOrders while any of its orders bills as open.
	Close(ctx context.Context, businessID, id uuid.UUID) (*models.SalesInstance, error)
}

// OrderRepository persists orders.
type OrderRepository interface {
	// Save inserts the order and its good references in one transaction and
	// publishes order.created through the outbox in the same transaction.
	Save(ctx context.Context, o *models.Order) error

	// GetByID returns an order scoped to the business.
	GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Order, error)

	// FindBySalesInstance lists the instance's orders oldest-first.
	FindBySalesInstance(ctx context.Context, businessID, salesInstanceID uuid.UUID) ([]*models.Order, error)

	// SetBillingStatus transitions the billing status, enforcing `from` as
	// the current state. Mismatch → ErrOrderNotVoidable for void, otherwise
	// ErrOrderNotFound semantics.
	SetBillingStatus(ctx context.Context, businessID, id uuid.UUID, from, to models.BillingStatus) (*models.Order, error)
}
