package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogdomain "github.com/jpsm83/restaurant-pos/services/catalog/domain"
	"github.com/jpsm83/restaurant-pos/services/catalog/domain/models"
	"github.com/jpsm83/restaurant-pos/services/catalog/domain/repositories"
)

// SupplierGoodService orchestrates procurement-catalog writes and reads.
// The derived price per unit is recomputed on every pricing change; the
// dynamic on-hand count only ever moves through atomic increments.
type SupplierGoodService struct {
	repo repositories.SupplierGoodRepository
}

// NewSupplierGoodService returns a SupplierGoodService wired with the given repository.
func NewSupplierGoodService(repo repositories.SupplierGoodRepository) *SupplierGoodService {
	return &SupplierGoodService{repo: repo}
}

// CreateSupplierGoodInput carries the client-supplied fields for a new
// supplier good. Price per unit is derived, never accepted.
type CreateSupplierGoodInput struct {
	SupplierID              uuid.UUID
	Name                    string
	MainCategory            string
	SubCategory             string
	MeasurementUnit         string
	TotalQuantityPerUnit    decimal.Decimal
	WholesalePrice          decimal.Decimal
	ParLevel                decimal.Decimal
	MinimumQuantityRequired decimal.Decimal
	Allergens               []string
}

// Create validates and persists a SupplierGood.
func (s *SupplierGoodService) Create(ctx context.Context, businessID uuid.UUID, in CreateSupplierGoodInput) (*models.SupplierGood, error) {
	good, err := models.NewSupplierGood(
		businessID, in.SupplierID,
		in.Name, in.MainCategory, in.SubCategory, in.MeasurementUnit,
		in.TotalQuantityPerUnit, in.WholesalePrice, in.ParLevel, in.MinimumQuantityRequired,
		in.Allergens,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", catalogdomain.ErrInvalidGood, err)
	}

	if err := s.repo.Save(ctx, good); err != nil {
		return nil, fmt.Errorf("save supplier good: %w", err)
	}
	return good, nil
}

// GetByID retrieves a SupplierGood scoped to the business.
func (s *SupplierGoodService) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.SupplierGood, error) {
	good, err := s.repo.GetByID(ctx, businessID, id)
	if err != nil {
		return nil, fmt.Errorf("get supplier good: %w", err)
	}
	return good, nil
}

// List returns a paginated slice of supplier goods for the business plus total count.
func (s *SupplierGoodService) List(ctx context.Context, businessID uuid.UUID, opts repositories.QueryOpts) ([]*models.SupplierGood, int, error) {
	goods, total, err := s.repo.FindByBusinessID(ctx, businessID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list supplier goods: %w", err)
	}
	return goods, total, nil
}

// UpdateSupplierGoodInput carries the mutable fields of a supplier good.
// Omitted fields keep the stored value; CurrentlyInUse is a pointer so a
// request that leaves it out does not flip the flag.
type UpdateSupplierGoodInput struct {
	Name                    string
	MainCategory            string
	SubCategory             string
	MeasurementUnit         string
	TotalQuantityPerUnit    decimal.Decimal
	WholesalePrice          decimal.Decimal
	ParLevel                decimal.Decimal
	MinimumQuantityRequired decimal.Decimal
	Allergens               []string
	CurrentlyInUse          *bool
}

// Update applies field changes and recomputes the derived unit price.
func (s *SupplierGoodService) Update(ctx context.Context, businessID, id uuid.UUID, in UpdateSupplierGoodInput) (*models.SupplierGood, error) {
	good, err := s.repo.GetByID(ctx, businessID, id)
	if err != nil {
		return nil, fmt.Errorf("get supplier good: %w", err)
	}

	if in.Name != "" {
		good.Name = in.Name
	}
	if in.MainCategory != "" {
		good.MainCategory = in.MainCategory
	}
	if in.SubCategory != "" {
		good.SubCategory = in.SubCategory
	}
	if in.MeasurementUnit != "" {
		good.MeasurementUnit = in.MeasurementUnit
	}
	if in.Allergens != nil {
		good.Allergens = models.UnionAllergens(in.Allergens)
	}
	if !in.ParLevel.IsZero() {
		good.ParLevel = in.ParLevel
	}
	if !in.MinimumQuantityRequired.IsZero() {
		good.MinimumQuantityRequired = in.MinimumQuantityRequired
	}
	if in.CurrentlyInUse != nil {
		good.CurrentlyInUse = *in.CurrentlyInUse
	}

	if !in.WholesalePrice.IsZero() || !in.TotalQuantityPerUnit.IsZero() {
		wholesale := good.WholesalePrice
		perUnit := good.TotalQuantityPerUnit
		if !in.WholesalePrice.IsZero() {
			wholesale = in.WholesalePrice
		}
		if !in.TotalQuantityPerUnit.IsZero() {
			perUnit = in.TotalQuantityPerUnit
		}
		if err := good.Reprice(wholesale, perUnit); err != nil {
			return nil, fmt.Errorf("%w: %w", catalogdomain.ErrInvalidGood, err)
		}
	}

	if err := s.repo.Update(ctx, good); err != nil {
		return nil, fmt.Errorf("update supplier good: %w", err)
	}
	return good, nil
}

// Delete removes a supplier good unless it is still referenced.
func (s *SupplierGoodService) Delete(ctx context.Context, businessID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, businessID, id); err != nil {
		return fmt.Errorf("delete supplier good: %w", err)
	}
	return nil
}

// AdjustDynamicCounts applies signed on-hand deltas, one independent atomic
// increment per supplier good. Returns how many goods matched.
func (s *SupplierGoodService) AdjustDynamicCounts(ctx context.Context, businessID uuid.UUID, deltas []repositories.CountDelta) (int, error) {
	applied, err := s.repo.AdjustDynamicCounts(ctx, businessID, deltas)
	if err != nil {
		return applied, fmt.Errorf("adjust dynamic counts: %w", err)
	}
	return applied, nil
}
