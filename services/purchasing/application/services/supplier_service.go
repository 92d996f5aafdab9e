package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	purchasingdomain "github.com/jpsm83/restaurant-pos/services/purchasing/domain"
	"github.com/jpsm83/restaurant-pos/services/purchasing/domain/models"
	"github.com/jpsm83/restaurant-pos/services/purchasing/domain/repositories"
)

// SupplierService manages the suppliers a business purchases from.
type SupplierService struct {
	repo repositories.SupplierRepository
}

// NewSupplierService returns a SupplierService wired with the given repository.
func NewSupplierService(repo repositories.SupplierRepository) *SupplierService {
	return &SupplierService{repo: repo}
}

// Create registers a regular supplier. The sentinel trade name is reserved
// for the one-time-purchase resolver.
func (s *SupplierService) Create(ctx context.Context, businessID uuid.UUID, tradeName string) (*models.Supplier, error) {
	if tradeName == models.OneTimeSupplierName {
		return nil, fmt.Errorf("%w: trade name %q is reserved", purchasingdomain.ErrInvalidPurchase, tradeName)
	}
	supplier, err := models.NewSupplier(businessID, tradeName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", purchasingdomain.ErrInvalidPurchase, err)
	}
	if err := s.repo.Save(ctx, supplier); err != nil {
		return nil, fmt.Errorf("save supplier: %w", err)
	}
	return supplier, nil
}

// GetByID returns a supplier scoped to the business.
func (s *SupplierService) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Supplier, error) {
	supplier, err := s.repo.GetByID(ctx, businessID, id)
	if err != nil {
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return supplier, nil
}

// List returns paginated suppliers plus total count.
func (s *SupplierService) List(ctx context.Context, businessID uuid.UUID, opts repositories.QueryOpts) ([]*models.Supplier, int, error) {
	suppliers, total, err := s.repo.FindByBusinessID(ctx, businessID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, total, nil
}
