package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgcache "github.com/jpsm83/restaurant-pos/pkg/cache"
	catalogdomain "github.com/jpsm83/restaurant-pos/services/catalog/domain"
	"github.com/jpsm83/restaurant-pos/services/catalog/domain/models"
	"github.com/jpsm83/restaurant-pos/services/catalog/domain/repositories"
	domainsvcs "github.com/jpsm83/restaurant-pos/services/catalog/domain/services"
)

// BusinessGoodService orchestrates the sellable-goods catalog. Cost price and
// allergens are always derived server-side by the cost calculator; the two
// composition modes are mutually exclusive by construction of the tagged union.
type BusinessGoodService struct {
	repo      repositories.BusinessGoodRepository
	suppliers repositories.SupplierGoodRepository
	cache     *pkgcache.BusinessGoodCache
}

// NewBusinessGoodService returns a BusinessGoodService wired with the given
// repositories and cache.
func NewBusinessGoodService(
	repo repositories.BusinessGoodRepository,
	suppliers repositories.SupplierGoodRepository,
	goodCache *pkgcache.BusinessGoodCache,
) *BusinessGoodService {
	return &BusinessGoodService{repo: repo, suppliers: suppliers, cache: goodCache}
}

// IngredientInput is one client-supplied ingredient line. The cost of the
// required quantity is derived, never accepted.
type IngredientInput struct {
	SupplierGoodID   uuid.UUID
	MeasurementUnit  string
	RequiredQuantity decimal.Decimal
}

// CompositionInput carries the raw composition request; exactly one of the
// two fields may be non-empty.
type CompositionInput struct {
	Ingredients []IngredientInput
	SetMenu     []uuid.UUID
}

// CreateBusinessGoodInput carries the client-supplied fields for a new
// business good.
type CreateBusinessGoodInput struct {
	Name         string
	Keyword      string
	MainCategory string
	SubCategory  string
	SellingPrice decimal.Decimal
	OnMenu       bool
	Available    bool
	Description  string
	Composition  CompositionInput
}

// Create derives cost/allergens from the requested composition and persists
// the good. Nothing is written when derivation fails.
func (s *BusinessGoodService) Create(ctx context.Context, businessID uuid.UUID, in CreateBusinessGoodInput) (*models.BusinessGood, error) {
	good, err := models.NewBusinessGood(
		businessID, in.Name, in.Keyword, in.MainCategory, in.SubCategory,
		in.SellingPrice, in.OnMenu, in.Available, in.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", catalogdomain.ErrInvalidGood, err)
	}

	derivation, err := s.derive(ctx, businessID, in.Composition)
	if err != nil {
		return nil, err
	}
	good.ApplyDerivation(derivation.Composition, derivation.CostPrice, derivation.Allergens)

	if err := s.repo.Save(ctx, good); err != nil {
		return nil, fmt.Errorf("save business good: %w", err)
	}
	return good, nil
}

// UpdateBusinessGoodInput carries the mutable fields of a business good.
// Omitted fields keep the stored value: the booleans are pointers so a
// request that leaves them out does not flip the flags, and a nil
// Composition keeps the stored composition and its derived values.
type UpdateBusinessGoodInput struct {
	Name         string
	Keyword      string
	MainCategory string
	SubCategory  string
	SellingPrice decimal.Decimal
	OnMenu       *bool
	Available    *bool
	Description  string
	Composition  *CompositionInput
}

// Update applies field changes and, when a composition is supplied, re-derives
// cost/allergens. Switching mode clears the previous variant.
func (s *BusinessGoodService) Update(ctx context.Context, businessID, id uuid.UUID, in UpdateBusinessGoodInput) (*models.BusinessGood, error) {
	good, err := s.repo.GetByID(ctx, businessID, id)
	if err != nil {
		return nil, fmt.Errorf("get business good: %w", err)
	}

	if in.Name != "" {
		good.Name = in.Name
	}
	if in.Keyword != "" {
		good.Keyword = in.Keyword
	}
	if in.MainCategory != "" {
		good.MainCategory = in.MainCategory
	}
	if in.SubCategory != "" {
		good.SubCategory = in.SubCategory
	}
	if !in.SellingPrice.IsZero() {
		if !in.SellingPrice.IsPositive() {
			return nil, fmt.Errorf("%w: selling price must be positive", catalogdomain.ErrInvalidGood)
		}
		good.SellingPrice = in.SellingPrice
	}
	if in.Description != "" {
		good.Description = in.Description
	}
	if in.OnMenu != nil {
		good.OnMenu = *in.OnMenu
	}
	if in.Available != nil {
		good.Available = *in.Available
	}

	if in.Composition != nil {
		derivation, err := s.derive(ctx, businessID, *in.Composition)
		if err != nil {
			return nil, err
		}
		good.ApplyDerivation(derivation.Composition, derivation.CostPrice, derivation.Allergens)
	}

	if err := s.repo.Update(ctx, good); err != nil {
		return nil, fmt.Errorf("update business good: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Delete(context.WithoutCancel(ctx), businessID, id)
	}
	return good, nil
}

// GetByID retrieves a BusinessGood with its composition.
func (s *BusinessGoodService) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.BusinessGood, error) {
	good, err := s.repo.GetByID(ctx, businessID, id)
	if err != nil {
		return nil, fmt.Errorf("get business good: %w", err)
	}
	return good, nil
}

// MenuItem serves the menu projection using a read-through cache pattern:
//  1. Check Redis cache first.
//  2. On cache miss (or cache error), query Postgres.
//  3. Asynchronously warm the cache with the Postgres result.
func (s *BusinessGoodService) MenuItem(ctx context.Context, businessID, id uuid.UUID) (*pkgcache.CachedBusinessGood, error) {
	if s.cache != nil {
		// A miss or a cache error both fall through to Postgres.
		if cached, err := s.cache.Get(ctx, businessID, id); err == nil {
			return cached, nil
		}
	}

	good, err := s.repo.GetByID(ctx, businessID, id)
	if err != nil {
		return nil, fmt.Errorf("get business good: %w", err)
	}

	item := &pkgcache.CachedBusinessGood{
		ID:           good.ID,
		BusinessID:   good.BusinessID,
		Name:         good.Name,
		SellingPrice: good.SellingPrice.String(),
		CostPrice:    good.CostPrice.String(),
		Allergens:    good.Allergens,
		UpdatedAt:    good.UpdatedAt,
	}
	if s.cache != nil {
		go func() {
			_ = s.cache.Set(context.Background(), item)
		}()
	}
	return item, nil
}

// List returns a paginated slice of business goods for the business plus total count.
func (s *BusinessGoodService) List(ctx context.Context, businessID uuid.UUID, opts repositories.QueryOpts) ([]*models.BusinessGood, int, error) {
	goods, total, err := s.repo.FindByBusinessID(ctx, businessID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list business goods: %w", err)
	}
	return goods, total, nil
}

// Delete removes a business good unless open orders or set menus reference it.
func (s *BusinessGoodService) Delete(ctx context.Context, businessID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, businessID, id); err != nil {
		return fmt.Errorf("delete business good: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Delete(context.WithoutCancel(ctx), businessID, id)
	}
	return nil
}

// GoodsByIDs exposes composition-loaded goods to other bounded contexts
// (the order stock mutator expands goods into supplier-good deltas).
func (s *BusinessGoodService) GoodsByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*models.BusinessGood, error) {
	goods, err := s.repo.GetManyByIDs(ctx, businessID, ids)
	if err != nil {
		return nil, fmt.Errorf("get business goods: %w", err)
	}
	return goods, nil
}

// derive runs the composite cost calculator for the requested mode.
// Both modes present, or neither, is a validation failure before any write.
func (s *BusinessGoodService) derive(ctx context.Context, businessID uuid.UUID, in CompositionInput) (domainsvcs.Derivation, error) {
	switch {
	case len(in.Ingredients) > 0 && len(in.SetMenu) > 0:
		return domainsvcs.Derivation{}, fmt.Errorf("%w: only one of ingredients or set menu can be assigned", catalogdomain.ErrInvalidComposition)
	case len(in.Ingredients) > 0:
		return s.deriveIngredients(ctx, businessID, in.Ingredients)
	case len(in.SetMenu) > 0:
		return s.deriveSetMenu(ctx, businessID, in.SetMenu)
	default:
		return domainsvcs.Derivation{}, fmt.Errorf("%w: one of ingredients or set menu is required", catalogdomain.ErrInvalidComposition)
	}
}

func (s *BusinessGoodService) deriveIngredients(ctx context.Context, businessID uuid.UUID, inputs []IngredientInput) (domainsvcs.Derivation, error) {
	lines := make([]models.IngredientLine, len(inputs))
	ids := make([]uuid.UUID, len(inputs))
	for i, in := range inputs {
		if !in.RequiredQuantity.IsPositive() {
			return domainsvcs.Derivation{}, fmt.Errorf("%w: ingredient %d: required quantity must be positive", catalogdomain.ErrInvalidComposition, i)
		}
		lines[i] = models.IngredientLine{
			SupplierGoodID:   in.SupplierGoodID,
			MeasurementUnit:  in.MeasurementUnit,
			RequiredQuantity: in.RequiredQuantity,
		}
		ids[i] = in.SupplierGoodID
	}

	set, err := s.suppliers.GetManyByIDs(ctx, businessID, ids)
	if err != nil {
		return domainsvcs.Derivation{}, fmt.Errorf("resolve ingredients: %w", err)
	}

	derivation, err := domainsvcs.CostIngredients(set, businessID, lines)
	if err != nil {
		return domainsvcs.Derivation{}, err
	}
	return derivation, nil
}

func (s *BusinessGoodService) deriveSetMenu(ctx context.Context, businessID uuid.UUID, componentIDs []uuid.UUID) (domainsvcs.Derivation, error) {
	found, err := s.repo.GetManyByIDs(ctx, businessID, componentIDs)
	if err != nil {
		return domainsvcs.Derivation{}, fmt.Errorf("resolve set menu components: %w", err)
	}

	components := make([]*models.BusinessGood, len(componentIDs))
	for i, id := range componentIDs {
		component, ok := found[id]
		if !ok {
			return domainsvcs.Derivation{}, fmt.Errorf("%w: component %s", catalogdomain.ErrBusinessGoodNotFound, id)
		}
		components[i] = component
	}

	derivation, err := domainsvcs.CostSetMenu(components)
	if err != nil {
		return domainsvcs.Derivation{}, err
	}
	return derivation, nil
}
