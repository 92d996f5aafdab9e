package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jpsm83/restaurant-pos/pkg/logger"
	invsvcs "github.com/jpsm83/restaurant-pos/services/inventory/application/services"
	invrepos "github.com/jpsm83/restaurant-pos/services/inventory/domain/repositories"
	purchasingdomain "github.com/jpsm83/restaurant-pos/services/purchasing/domain"
	domainevents "github.com/jpsm83/restaurant-pos/services/purchasing/domain/events"
	"github.com/jpsm83/restaurant-pos/services/purchasing/domain/models"
	"github.com/jpsm83/restaurant-pos/services/purchasing/domain/repositories"
	domainsvcs "github.com/jpsm83/restaurant-pos/services/purchasing/domain/services"
)

// Reconciler folds purchased quantities into the open inventory snapshot.
// Satisfied by the inventory context's InventoryService.
type Reconciler interface {
	Reconcile(ctx context.Context, businessID uuid.UUID, lines []invrepos.ReconcileLine) (invsvcs.ReconcileResult, error)
}

// Publisher delivers post-commit messages. Satisfied by events.EventBus.
type Publisher interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
}

// PurchaseService orchestrates the append-only purchase ledger.
//
// A purchase commits first; reconciliation against the open inventory runs
// after commit and is best-effort. A reconciliation failure is reported on
// the success response and as an event — it never rolls the purchase back.
type PurchaseService struct {
	purchases  repositories.PurchaseRepository
	suppliers  repositories.SupplierRepository
	reconciler Reconciler
	bus        Publisher
	log        logger.Logger
}

// NewPurchaseService returns a PurchaseService wired with its dependencies.
func NewPurchaseService(
	purchases repositories.PurchaseRepository,
	suppliers repositories.SupplierRepository,
	reconciler Reconciler,
	bus Publisher,
	log logger.Logger,
) *PurchaseService {
	return &PurchaseService{
		purchases:  purchases,
		suppliers:  suppliers,
		reconciler: reconciler,
		bus:        bus,
		log:        log,
	}
}

// PurchaseItemInput is one client-supplied purchase line.
type PurchaseItemInput struct {
	SupplierGoodID    *uuid.UUID
	QuantityPurchased decimal.Decimal
	PurchasePrice     decimal.Decimal
}

// CreatePurchaseInput carries the client-supplied fields for a new purchase.
// SupplierID may be nil only for one-time purchases; the sentinel supplier is
// resolved server-side.
type CreatePurchaseInput struct {
	SupplierID        *uuid.UUID
	PurchasedByUserID uuid.UUID
	PurchaseDate      time.Time
	ReceiptID         string
	OneTimePurchase   bool
	ImageURL          string
	Items             []PurchaseItemInput
}

// ReconciliationOutcome reports how the post-commit reconciliation went.
// It rides the 201 response; Error is set when nothing applied.
type ReconciliationOutcome struct {
	Applied   bool   `json:"applied"`
	Matched   int    `json:"matched"`
	Unmatched int    `json:"unmatched"`
	Error     string `json:"error,omitempty"`
}

// CreatePurchaseResult bundles the committed purchase with its
// reconciliation outcome.
type CreatePurchaseResult struct {
	Purchase       *models.Purchase
	Reconciliation ReconciliationOutcome
}

// Create validates, persists and then reconciles a purchase.
//
// Order of operations matters: validation happens before any write; the
// purchase and its purchase.created event commit atomically through the
// outbox; reconciliation runs after commit so its failure cannot undo the
// ledger entry.
func (s *PurchaseService) Create(ctx context.Context, businessID uuid.UUID, in CreatePurchaseInput) (*CreatePurchaseResult, error) {
	items := make([]models.PurchaseItem, len(in.Items))
	for i, item := range in.Items {
		items[i] = models.PurchaseItem{
			SupplierGoodID:    item.SupplierGoodID,
			QuantityPurchased: item.QuantityPurchased,
			PurchasePrice:     item.PurchasePrice,
		}
	}
	if err := domainsvcs.ValidateItems(items, in.OneTimePurchase); err != nil {
		return nil, err
	}

	supplierID, err := s.resolveSupplier(ctx, businessID, in)
	if err != nil {
		return nil, err
	}

	purchase, err := models.NewPurchase(
		businessID, supplierID, in.PurchasedByUserID,
		in.PurchaseDate, in.ReceiptID, in.OneTimePurchase, in.ImageURL, items,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", purchasingdomain.ErrInvalidPurchase, err)
	}

	if err := s.purchases.Save(ctx, purchase); err != nil {
		return nil, fmt.Errorf("save purchase: %w", err)
	}

	return &CreatePurchaseResult{
		Purchase:       purchase,
		Reconciliation: s.reconcile(ctx, purchase),
	}, nil
}

// GetByID returns a purchase scoped to the business.
func (s *PurchaseService) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Purchase, error) {
	p, err := s.purchases.GetByID(ctx, businessID, id)
	if err != nil {
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	return p, nil
}

// List returns purchases under an optional purchase-date filter. A start
// date after the end date is rejected before touching the store.
func (s *PurchaseService) List(ctx context.Context, businessID uuid.UUID, dr repositories.DateRange, opts repositories.QueryOpts) ([]*models.Purchase, int, error) {
	if !dr.Start.IsZero() && !dr.End.IsZero() && dr.Start.After(dr.End) {
		return nil, 0, purchasingdomain.ErrInvalidDateRange
	}
	purchases, total, err := s.purchases.FindByBusinessID(ctx, businessID, dr, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list purchases: %w", err)
	}
	return purchases, total, nil
}

func (s *PurchaseService) resolveSupplier(ctx context.Context, businessID uuid.UUID, in CreatePurchaseInput) (uuid.UUID, error) {
	if in.SupplierID != nil {
		supplier, err := s.suppliers.GetByID(ctx, businessID, *in.SupplierID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("resolve supplier: %w", err)
		}
		return supplier.ID, nil
	}
	if !in.OneTimePurchase {
		return uuid.Nil, fmt.Errorf("%w: supplier is required unless the purchase is a one-time purchase", purchasingdomain.ErrInvalidPurchase)
	}
	sentinel, err := s.suppliers.EnsureOneTimeSupplier(ctx, businessID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve one-time supplier: %w", err)
	}
	return sentinel.ID, nil
}

// reconcile folds the committed purchase into the open snapshot. Ad-hoc
// lines without a catalog good are not reconcilable and are left out.
func (s *PurchaseService) reconcile(ctx context.Context, p *models.Purchase) ReconciliationOutcome {
	var lines []invrepos.ReconcileLine
	for _, item := range p.Items {
		if item.SupplierGoodID == nil {
			continue
		}
		lines = append(lines, invrepos.ReconcileLine{
			SupplierGoodID: *item.SupplierGoodID,
			Quantity:       item.QuantityPurchased,
		})
	}
	if len(lines) == 0 {
		return ReconciliationOutcome{Applied: false, Error: "no reconcilable lines"}
	}

	result, err := s.reconciler.Reconcile(ctx, p.BusinessID, lines)
	outcome := ReconciliationOutcome{
		Applied:   result.Applied,
		Matched:   result.Matched,
		Unmatched: result.Unmatched,
	}
	if err != nil {
		outcome.Error = err.Error()
		s.log.WarnContext(ctx, "purchase reconciliation failed",
			"purchase_id", p.ID, "business_id", p.BusinessID, "error", err)
		s.publishReconciliationFailed(ctx, p, err)
	}
	return outcome
}

func (s *PurchaseService) publishReconciliationFailed(ctx context.Context, p *models.Purchase, cause error) {
	event := domainevents.ReconciliationFailedEvent{
		EventID:    uuid.New(),
		Version:    1,
		PurchaseID: p.ID,
		BusinessID: p.BusinessID,
		Reason:     cause.Error(),
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.log.ErrorContext(ctx, "marshal reconciliation-failed event", "error", err)
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_id", event.EventID.String())
	msg.Metadata.Set("event_version", "1")
	if err := s.bus.Publish(ctx, domainevents.TopicPurchaseReconciliationFailed, msg); err != nil {
		s.log.ErrorContext(ctx, "publish reconciliation-failed event", "error", err)
	}
}
