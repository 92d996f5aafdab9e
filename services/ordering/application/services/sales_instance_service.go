package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	orderingdomain "github.com/jpsm83/restaurant-pos/services/ordering/domain"
	"github.com/jpsm83/restaurant-pos/services/ordering/domain/models"
	"github.com/jpsm83/restaurant-pos/services/ordering/domain/repositories"
)

// SalesInstanceService manages tables/tabs.
type SalesInstanceService struct {
	repo repositories.SalesInstanceRepository
}

// NewSalesInstanceService returns a SalesInstanceService wired with the given
// repository.
func NewSalesInstanceService(repo repositories.SalesInstanceRepository) *SalesInstanceService {
	return &SalesInstanceService{repo: repo}
}

// Open creates an occupied sales instance.
func (s *SalesInstanceService) Open(ctx context.Context, businessID uuid.UUID, reference string, responsibleUserID uuid.UUID) (*models.SalesInstance, error) {
	instance, err := models.NewSalesInstance(businessID, reference, responsibleUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", orderingdomain.ErrInvalidOrder, err)
	}
	if err := s.repo.Save(ctx, instance); err != nil {
		return nil, fmt.Errorf("save sales instance: %w", err)
	}
	return instance, nil
}

// GetByID returns a sales instance scoped to the business.
func (s *SalesInstanceService) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.SalesInstance, error) {
	instance, err := s.repo.GetByID(ctx, businessID, id)
	if err != nil {
		return nil, fmt.Errorf("get sales instance: %w", err)
	}
	return instance, nil
}

// List returns paginated sales instances plus total count.
func (s *SalesInstanceService) List(ctx context.Context, businessID uuid.UUID, opts repositories.QueryOpts) ([]*models.SalesInstance, int, error) {
	instances, total, err := s.repo.FindByBusinessID(ctx, businessID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales instances: %w", err)
	}
	return instances, total, nil
}

// Close settles a sales instance. Rejected while any of its orders still
// bills open.
func (s *SalesInstanceService) Close(ctx context.Context, businessID, id uuid.UUID) (*models.SalesInstance, error) {
	instance, err := s.repo.Close(ctx, businessID, id)
	if err != nil {
		return nil, fmt.Errorf("close sales instance: %w", err)
	}
	return instance, nil
}
