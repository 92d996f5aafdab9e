package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	invdomain "github.com/jpsm83/restaurant-pos/services/inventory/domain"
	"github.com/jpsm83/restaurant-pos/services/inventory/domain/models"
	"github.com/jpsm83/restaurant-pos/services/inventory/domain/repositories"
)

// InventoryService orchestrates snapshot lifecycle and purchase reconciliation.
type InventoryService struct {
	repo repositories.InventoryRepository
}

// NewInventoryService returns an InventoryService wired with the given repository.
func NewInventoryService(repo repositories.InventoryRepository) *InventoryService {
	return &InventoryService{repo: repo}
}

// Open creates a snapshot for the business seeded with its in-use supplier
// goods. A second open snapshot for the same business is a conflict.
func (s *InventoryService) Open(ctx context.Context, businessID uuid.UUID) (*models.Inventory, error) {
	inv, err := models.NewInventory(businessID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", invdomain.ErrInvalidCount, err)
	}
	if err := s.repo.Open(ctx, inv); err != nil {
		return nil, fmt.Errorf("open inventory: %w", err)
	}
	return inv, nil
}

// GetOpen returns the business's open snapshot.
func (s *InventoryService) GetOpen(ctx context.Context, businessID uuid.UUID) (*models.Inventory, error) {
	inv, err := s.repo.GetOpen(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("get open inventory: %w", err)
	}
	return inv, nil
}

// GetByID returns a snapshot scoped to the business.
func (s *InventoryService) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Inventory, error) {
	inv, err := s.repo.GetByID(ctx, businessID, id)
	if err != nil {
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return inv, nil
}

// List returns paginated snapshot headers plus total count.
func (s *InventoryService) List(ctx context.Context, businessID uuid.UUID, opts repositories.QueryOpts) ([]*models.Inventory, int, error) {
	invs, total, err := s.repo.FindByBusinessID(ctx, businessID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventories: %w", err)
	}
	return invs, total, nil
}

// RecordCountInput is one physical count for an open snapshot line.
type RecordCountInput struct {
	SupplierGoodID  uuid.UUID
	CountedQuantity decimal.Decimal
	CountedByUserID uuid.UUID
}

// RecordCount stores a physical count and its deviation from the system
// count. Counting a finalized snapshot or a good outside it is rejected.
func (s *InventoryService) RecordCount(ctx context.Context, businessID, inventoryID uuid.UUID, in RecordCountInput) (*models.Inventory, error) {
	if in.CountedQuantity.IsNegative() {
		return nil, fmt.Errorf("%w: counted quantity must not be negative", invdomain.ErrInvalidCount)
	}

	inv, err := s.repo.GetByID(ctx, businessID, inventoryID)
	if err != nil {
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	if !inv.IsOpen() {
		return nil, invdomain.ErrInventoryFinalized
	}

	var system decimal.Decimal
	found := false
	for _, g := range inv.Goods {
		if g.SupplierGoodID == in.SupplierGoodID {
			system = g.DynamicSystemCount
			found = true
			break
		}
	}
	if !found {
		return nil, invdomain.ErrGoodNotInInventory
	}

	rec := repositories.CountRecord{
		SupplierGoodID:   in.SupplierGoodID,
		CountedQuantity:  in.CountedQuantity,
		DeviationPercent: models.DeviationPercent(system, in.CountedQuantity),
		CountedByUserID:  in.CountedByUserID,
	}
	if err := s.repo.RecordCount(ctx, businessID, inventoryID, rec); err != nil {
		return nil, fmt.Errorf("record count: %w", err)
	}
	return s.repo.GetByID(ctx, businessID, inventoryID)
}

// Finalize marks the snapshot terminal and resets the catalog's dynamic
// counts to the physical counts.
func (s *InventoryService) Finalize(ctx context.Context, businessID, inventoryID uuid.UUID) (*models.Inventory, error) {
	inv, err := s.repo.Finalize(ctx, businessID, inventoryID)
	if err != nil {
		return nil, fmt.Errorf("finalize inventory: %w", err)
	}
	return inv, nil
}

// ReconcileResult reports the outcome of folding a purchase into the open
// snapshot. A failed reconciliation never fails the purchase that triggered
// it; callers attach the result to their own success response.
type ReconcileResult struct {
	Applied   bool
	Matched   int
	Unmatched int
}

// Reconcile folds purchased quantities into the business's open snapshot,
// one independent atomic increment per line. Lines whose good is absent from
// the snapshot are skipped, not failed; zero matched lines is a failure.
func (s *InventoryService) Reconcile(ctx context.Context, businessID uuid.UUID, lines []repositories.ReconcileLine) (ReconcileResult, error) {
	if len(lines) == 0 {
		return ReconcileResult{}, fmt.Errorf("%w: no lines to reconcile", invdomain.ErrReconciliationFailed)
	}

	inv, err := s.repo.GetOpen(ctx, businessID)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("reconcile: %w", err)
	}

	matched, err := s.repo.IncrementSystemCounts(ctx, inv.ID, lines)
	if err != nil {
		return ReconcileResult{Matched: matched, Unmatched: len(lines) - matched},
			fmt.Errorf("reconcile: %w", err)
	}
	result := ReconcileResult{
		Applied:   matched > 0,
		Matched:   matched,
		Unmatched: len(lines) - matched,
	}
	if matched == 0 {
		return result, invdomain.ErrReconciliationFailed
	}
	return result, nil
}

// Recount rebuilds the open snapshot's system counts from the purchase
// ledger. Safe to run any number of times; used to repair a snapshot after a
// reconciliation failure.
func (s *InventoryService) Recount(ctx context.Context, businessID uuid.UUID) (*models.Inventory, error) {
	inv, err := s.repo.GetOpen(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("recount: %w", err)
	}
	if err := s.repo.RebuildSystemCounts(ctx, businessID, inv.ID); err != nil {
		return nil, fmt.Errorf("recount: %w", err)
	}
	return s.repo.GetByID(ctx, businessID, inv.ID)
}
