package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jpsm83/restaurant-pos/pkg/logger"
	catalogmodels "github.com/jpsm83/restaurant-pos/services/catalog/domain/models"
	catalogrepos "github.com/jpsm83/restaurant-pos/services/catalog/domain/repositories"
	orderingdomain "github.com/jpsm83/restaurant-pos/services/ordering/domain"
	"github.com/jpsm83/restaurant-pos/services/ordering/domain/models"
	"github.com/jpsm83/restaurant-pos/services/ordering/domain/repositories"
	domainsvcs "github.com/jpsm83/restaurant-pos/services/ordering/domain/services"
)

// CatalogGoods loads composition-complete business goods from the catalog
// context. Satisfied by the catalog's BusinessGoodService.
type CatalogGoods interface {
	GoodsByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*catalogmodels.BusinessGood, error)
}

// StockAdjuster applies signed deltas to supplier-good dynamic counts.
// Satisfied by the catalog's SupplierGoodService.
type StockAdjuster interface {
	AdjustDynamicCounts(ctx context.Context, businessID uuid.UUID, deltas []catalogrepos.CountDelta) (int, error)
}

// OrderService orchestrates order lines and their stock consumption.
//
// The order commits first; stock mutation runs after commit and is
// best-effort. A failed mutation is reported on the success response and
// never voids the order.
type OrderService struct {
	orders    repositories.OrderRepository
	instances repositories.SalesInstanceRepository
	catalog   CatalogGoods
	stock     StockAdjuster
	log       logger.Logger
}

// NewOrderService returns an OrderService wired with its dependencies.
func NewOrderService(
	orders repositories.OrderRepository,
	instances repositories.SalesInstanceRepository,
	catalog CatalogGoods,
	stock StockAdjuster,
	log logger.Logger,
) *OrderService {
	return &OrderService{orders: orders, instances: instances, catalog: catalog, stock: stock, log: log}
}

// CreateOrderInput carries the client-supplied fields for a new order line.
type CreateOrderInput struct {
	SalesInstanceID    uuid.UUID
	UserID             uuid.UUID
	UserRole           string
	BusinessGoodIDs    []uuid.UUID
	PromotionApplied   string
	DiscountPercentage decimal.Decimal
	// ClientNetPrice is only honored together with PromotionApplied; the
	// promotion math stays client-side and is recorded as given.
	ClientNetPrice *decimal.Decimal
	Comments       string
}

// StockMutationOutcome reports how the post-commit stock mutation went. It
// rides the success response; Error is set when nothing applied.
type StockMutationOutcome struct {
	Applied   bool   `json:"applied"`
	Adjusted  int    `json:"adjusted"`
	Unmatched int    `json:"unmatched"`
	Error     string `json:"error,omitempty"`
}

// CreateOrderResult bundles the committed order with its stock mutation
// outcome.
type CreateOrderResult struct {
	Order         *models.Order
	StockMutation StockMutationOutcome
}

// Create validates, prices, persists and then consumes stock for an order.
//
// Pricing and allergens are derived from the referenced goods; a beverage
// line ordered by a self-serve role lands as done instead of sent. The order
// and its order.created event commit atomically; the ingredient consumption
// runs after commit so its failure cannot undo the sale.
func (s *OrderService) Create(ctx context.Context, businessID uuid.UUID, in CreateOrderInput) (*CreateOrderResult, error) {
	instance, err := s.instances.GetByID(ctx, businessID, in.SalesInstanceID)
	if err != nil {
		return nil, fmt.Errorf("get sales instance: %w", err)
	}
	if !instance.IsOpen() {
		return nil, orderingdomain.ErrSalesInstanceClosed
	}

	order, err := models.NewOrder(
		businessID, in.SalesInstanceID, in.UserID,
		in.BusinessGoodIDs, in.PromotionApplied, in.DiscountPercentage, in.Comments,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", orderingdomain.ErrInvalidOrder, err)
	}

	goods, err := s.loadGoodsWithComponents(ctx, businessID, in.BusinessGoodIDs)
	if err != nil {
		return nil, err
	}

	gross, cost := decimal.Zero, decimal.Zero
	allBeverage := true
	allergenLists := make([][]string, 0, len(in.BusinessGoodIDs))
	for _, id := range in.BusinessGoodIDs {
		good := goods[id]
		gross = gross.Add(good.SellingPrice)
		cost = cost.Add(good.CostPrice)
		allergenLists = append(allergenLists, good.Allergens)
		if good.MainCategory != models.BeverageCategory {
			allBeverage = false
		}
	}
	order.OrderStatus = models.StatusForRole(in.UserRole, allBeverage)
	order.ApplyPricing(gross, cost, catalogmodels.UnionAllergens(allergenLists...), in.ClientNetPrice)

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	return &CreateOrderResult{
		Order:         order,
		StockMutation: s.mutateStock(ctx, order, goods, domainsvcs.DirectionAdd),
	}, nil
}

// GetByID returns an order scoped to the business.
func (s *OrderService) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, businessID, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// ListBySalesInstance returns the instance's orders oldest-first.
func (s *OrderService) ListBySalesInstance(ctx context.Context, businessID, salesInstanceID uuid.UUID) ([]*models.Order, error) {
	orders, err := s.orders.FindBySalesInstance(ctx, businessID, salesInstanceID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Void cancels an order with open billing and flows its consumed quantities
// back into the supplier-good counts.
func (s *OrderService) Void(ctx context.Context, businessID, id uuid.UUID) (*CreateOrderResult, error) {
	order, err := s.orders.SetBillingStatus(ctx, businessID, id, models.BillingOpen, models.BillingVoid)
	if err != nil {
		return nil, fmt.Errorf("void order: %w", err)
	}

	goods, err := s.loadGoodsWithComponents(ctx, businessID, order.BusinessGoodIDs)
	if err != nil {
		return &CreateOrderResult{
			Order:         order,
			StockMutation: StockMutationOutcome{Error: err.Error()},
		}, nil
	}
	return &CreateOrderResult{
		Order:         order,
		StockMutation: s.mutateStock(ctx, order, goods, domainsvcs.DirectionRemove),
	}, nil
}

// MarkPaid settles an order's billing.
func (s *OrderService) MarkPaid(ctx context.Context, businessID, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.SetBillingStatus(ctx, businessID, id, models.BillingOpen, models.BillingPaid)
	if err != nil {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}
	return order, nil
}

// loadGoodsWithComponents fetches the ordered goods plus, for set menus, the
// component goods the stock mutator expands into. Missing goods fail before
// anything is written.
func (s *OrderService) loadGoodsWithComponents(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*catalogmodels.BusinessGood, error) {
	goods, err := s.catalog.GoodsByIDs(ctx, businessID, ids)
	if err != nil {
		return nil, fmt.Errorf("load business goods: %w", err)
	}
	for _, id := range ids {
		if _, ok := goods[id]; !ok {
			return nil, fmt.Errorf("%w: business good %s not found", orderingdomain.ErrInvalidOrder, id)
		}
	}

	var missing []uuid.UUID
	for _, good := range goods {
		if good.IsSetMenu() {
			for _, componentID := range good.Composition.SetMenu() {
				if _, ok := goods[componentID]; !ok {
					missing = append(missing, componentID)
				}
			}
		}
	}
	if len(missing) > 0 {
		components, err := s.catalog.GoodsByIDs(ctx, businessID, missing)
		if err != nil {
			return nil, fmt.Errorf("load set menu components: %w", err)
		}
		for id, component := range components {
			goods[id] = component
		}
	}
	return goods, nil
}

func (s *OrderService) mutateStock(
	ctx context.Context,
	order *models.Order,
	goods map[uuid.UUID]*catalogmodels.BusinessGood,
	direction domainsvcs.MutationDirection,
) StockMutationOutcome {
	deltas, err := domainsvcs.StockDeltas(goods, order.BusinessGoodIDs, direction)
	if err != nil {
		s.log.WarnContext(ctx, "stock delta expansion failed",
			"order_id", order.ID, "business_id", order.BusinessID, "error", err)
		return StockMutationOutcome{Error: err.Error()}
	}

	adjusted, err := s.stock.AdjustDynamicCounts(ctx, order.BusinessID, deltas)
	outcome := StockMutationOutcome{
		Applied:   adjusted > 0,
		Adjusted:  adjusted,
		Unmatched: len(deltas) - adjusted,
	}
	if err != nil {
		outcome.Error = err.Error()
		s.log.WarnContext(ctx, "stock mutation failed",
			"order_id", order.ID, "business_id", order.BusinessID, "error", err)
	}
	return outcome
}
