package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jpsm83/restaurant-pos/pkg/config"
	"github.com/jpsm83/restaurant-pos/pkg/logger"
	catalogmodels "github.com/jpsm83/restaurant-pos/services/catalog/domain/models"
	catalogrepos "github.com/jpsm83/restaurant-pos/services/catalog/domain/repositories"
	orderingdomain "github.com/jpsm83/restaurant-pos/services/ordering/domain"
	"github.com/jpsm83/restaurant-pos/services/ordering/domain/models"
	"github.com/jpsm83/restaurant-pos/services/ordering/domain/repositories"
)

type fakeOrderRepo struct {
	saved   []*models.Order
	saveErr error
}

func (f *fakeOrderRepo) Save(_ context.Context, o *models.Order) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, o)
	return nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, businessID, id uuid.UUID) (*models.Order, error) {
	for _, o := range f.saved {
		if o.ID == id && o.BusinessID == businessID {
			return o, nil
		}
	}
	return nil, orderingdomain.ErrOrderNotFound
}

func (f *fakeOrderRepo) FindBySalesInstance(_ context.Context, businessID, salesInstanceID uuid.UUID) ([]*models.Order, error) {
	var out []*models.Order
	for _, o := range f.saved {
		if o.BusinessID == businessID && o.SalesInstanceID == salesInstanceID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) SetBillingStatus(_ context.Context, businessID, id uuid.UUID, from, to models.BillingStatus) (*models.Order, error) {
	for _, o := range f.saved {
		if o.ID != id || o.BusinessID != businessID {
			continue
		}
		if o.BillingStatus != from {
			if to == models.BillingVoid {
				return nil, orderingdomain.ErrOrderNotVoidable
			}
			return nil, orderingdomain.ErrOrderNotFound
		}
		o.BillingStatus = to
		return o, nil
	}
	return nil, orderingdomain.ErrOrderNotFound
}

type fakeInstanceRepo struct {
	instances map[uuid.UUID]*models.SalesInstance
}

func newFakeInstanceRepo() *fakeInstanceRepo {
	return &fakeInstanceRepo{instances: make(map[uuid.UUID]*models.SalesInstance)}
}

func (f *fakeInstanceRepo) Save(_ context.Context, s *models.SalesInstance) error {
	f.instances[s.ID] = s
	return nil
}

func (f *fakeInstanceRepo) GetByID(_ context.Context, businessID, id uuid.UUID) (*models.SalesInstance, error) {
	s, ok := f.instances[id]
	if !ok || s.BusinessID != businessID {
		return nil, orderingdomain.ErrSalesInstanceNotFound
	}
	return s, nil
}

func (f *fakeInstanceRepo) FindByBusinessID(_ context.Context, businessID uuid.UUID, _ repositories.QueryOpts) ([]*models.SalesInstance, int, error) {
	var out []*models.SalesInstance
	for _, s := range f.instances {
		if s.BusinessID == businessID {
			out = append(out, s)
		}
	}
	return out, len(out), nil
}

func (f *fakeInstanceRepo) Close(_ context.Context, businessID, id uuid.UUID) (*models.SalesInstance, error) {
	s, ok := f.instances[id]
	if !ok || s.BusinessID != businessID {
		return nil, orderingdomain.ErrSalesInstanceNotFound
	}
	s.Status = models.SalesInstanceClosed
	return s, nil
}

type fakeCatalog struct {
	goods map[uuid.UUID]*catalogmodels.BusinessGood
	calls int
}

func (f *fakeCatalog) GoodsByIDs(_ context.Context, businessID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*catalogmodels.BusinessGood, error) {
	f.calls++
	out := make(map[uuid.UUID]*catalogmodels.BusinessGood)
	for _, id := range ids {
		if g, ok := f.goods[id]; ok && g.BusinessID == businessID {
			out[id] = g
		}
	}
	return out, nil
}

type fakeStock struct {
	deltas    []catalogrepos.CountDelta
	adjustErr error
	calls     int
}

func (f *fakeStock) AdjustDynamicCounts(_ context.Context, _ uuid.UUID, deltas []catalogrepos.CountDelta) (int, error) {
	f.calls++
	f.deltas = deltas
	if f.adjustErr != nil {
		return 0, f.adjustErr
	}
	return len(deltas), nil
}

func testLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

func testGood(businessID uuid.UUID, category string, selling, cost int64, ingredientQty int64, allergens ...string) *catalogmodels.BusinessGood {
	comp, _ := catalogmodels.IngredientComposition([]catalogmodels.IngredientLine{
		{SupplierGoodID: uuid.New(), RequiredQuantity: decimal.NewFromInt(ingredientQty)},
	})
	return &catalogmodels.BusinessGood{
		ID:           uuid.New(),
		BusinessID:   businessID,
		Name:         "good",
		MainCategory: category,
		SellingPrice: decimal.NewFromInt(selling),
		CostPrice:    decimal.NewFromInt(cost),
		Allergens:    catalogmodels.Allergens(allergens),
		Composition:  comp,
	}
}

func openInstance(t *testing.T, repo *fakeInstanceRepo, businessID uuid.UUID) *models.SalesInstance {
	t.Helper()
	instance, err := models.NewSalesInstance(businessID, "Table 5", uuid.New())
	if err != nil {
		t.Fatalf("new sales instance: %v", err)
	}
	if err := repo.Save(context.Background(), instance); err != nil {
		t.Fatalf("save sales instance: %v", err)
	}
	return instance
}

func TestOrderService_Create(t *testing.T) {
	businessID := uuid.New()

	t.Run("derives pricing and consumes stock", func(t *testing.T) {
		orders := &fakeOrderRepo{}
		instances := newFakeInstanceRepo()
		instance := openInstance(t, instances, businessID)
		espresso := testGood(businessID, models.BeverageCategory, 4, 1, 2)
		croissant := testGood(businessID, "Food", 3, 1, 1, "gluten")
		catalog := &fakeCatalog{goods: map[uuid.UUID]*catalogmodels.BusinessGood{
			espresso.ID: espresso, croissant.ID: croissant,
		}}
		stock := &fakeStock{}
		svc := NewOrderService(orders, instances, catalog, stock, testLogger())

		result, err := svc.Create(context.Background(), businessID, CreateOrderInput{
			SalesInstanceID: instance.ID,
			UserID:          uuid.New(),
			UserRole:        "Waiter",
			BusinessGoodIDs: []uuid.UUID{espresso.ID, croissant.ID},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		order := result.Order
		if !order.OrderPrice.Equal(decimal.NewFromInt(7)) || !order.OrderNetPrice.Equal(decimal.NewFromInt(7)) {
			t.Fatalf("expected gross and net 7, got %s / %s", order.OrderPrice, order.OrderNetPrice)
		}
		if !order.OrderCostPrice.Equal(decimal.NewFromInt(2)) {
			t.Fatalf("expected cost 2, got %s", order.OrderCostPrice)
		}
		if len(order.Allergens) != 1 || order.Allergens[0] != "gluten" {
			t.Fatalf("expected allergens [gluten], got %v", order.Allergens)
		}
		if order.OrderStatus != models.OrderSent {
			t.Fatalf("mixed order from a waiter must be sent, got %q", order.OrderStatus)
		}
		if !result.StockMutation.Applied || result.StockMutation.Adjusted != 2 {
			t.Fatalf("unexpected stock outcome: %+v", result.StockMutation)
		}
		for _, d := range stock.deltas {
			if !d.Delta.IsNegative() {
				t.Fatalf("consumption deltas must be negative, got %s", d.Delta)
			}
		}
	})

	t.Run("self-serve beverage order lands done", func(t *testing.T) {
		orders := &fakeOrderRepo{}
		instances := newFakeInstanceRepo()
		instance := openInstance(t, instances, businessID)
		espresso := testGood(businessID, models.BeverageCategory, 4, 1, 2)
		catalog := &fakeCatalog{goods: map[uuid.UUID]*catalogmodels.BusinessGood{espresso.ID: espresso}}
		svc := NewOrderService(orders, instances, catalog, &fakeStock{}, testLogger())

		result, err := svc.Create(context.Background(), businessID, CreateOrderInput{
			SalesInstanceID: instance.ID,
			UserID:          uuid.New(),
			UserRole:        "Barista",
			BusinessGoodIDs: []uuid.UUID{espresso.ID},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Order.OrderStatus != models.OrderDone {
			t.Fatalf("expected done, got %q", result.Order.OrderStatus)
		}
	})

	t.Run("discount applies to the net price", func(t *testing.T) {
		orders := &fakeOrderRepo{}
		instances := newFakeInstanceRepo()
		instance := openInstance(t, instances, businessID)
		good := testGood(businessID, "Food", 20, 8, 1)
		catalog := &fakeCatalog{goods: map[uuid.UUID]*catalogmodels.BusinessGood{good.ID: good}}
		svc := NewOrderService(orders, instances, catalog, &fakeStock{}, testLogger())

		result, err := svc.Create(context.Background(), businessID, CreateOrderInput{
			SalesInstanceID:    instance.ID,
			UserID:             uuid.New(),
			UserRole:           "Waiter",
			BusinessGoodIDs:    []uuid.UUID{good.ID},
			DiscountPercentage: decimal.NewFromInt(10),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Order.OrderNetPrice.Equal(decimal.NewFromInt(18)) {
			t.Fatalf("expected net 18, got %s", result.Order.OrderNetPrice)
		}
	})

	t.Run("closed sales instance rejected", func(t *testing.T) {
		orders := &fakeOrderRepo{}
		instances := newFakeInstanceRepo()
		instance := openInstance(t, instances, businessID)
		instance.Status = models.SalesInstanceClosed
		svc := NewOrderService(orders, instances, &fakeCatalog{}, &fakeStock{}, testLogger())

		_, err := svc.Create(context.Background(), businessID, CreateOrderInput{
			SalesInstanceID: instance.ID,
			UserID:          uuid.New(),
			BusinessGoodIDs: []uuid.UUID{uuid.New()},
		})
		if !errors.Is(err, orderingdomain.ErrSalesInstanceClosed) {
			t.Fatalf("expected ErrSalesInstanceClosed, got %v", err)
		}
		if len(orders.saved) != 0 {
			t.Fatal("nothing should have been written")
		}
	})

	t.Run("unknown business good rejected before any write", func(t *testing.T) {
		orders := &fakeOrderRepo{}
		instances := newFakeInstanceRepo()
		instance := openInstance(t, instances, businessID)
		svc := NewOrderService(orders, instances, &fakeCatalog{}, &fakeStock{}, testLogger())

		_, err := svc.Create(context.Background(), businessID, CreateOrderInput{
			SalesInstanceID: instance.ID,
			UserID:          uuid.New(),
			BusinessGoodIDs: []uuid.UUID{uuid.New()},
		})
		if !errors.Is(err, orderingdomain.ErrInvalidOrder) {
			t.Fatalf("expected ErrInvalidOrder, got %v", err)
		}
		if len(orders.saved) != 0 {
			t.Fatal("nothing should have been written")
		}
	})

	t.Run("set menu loads its components for the stock mutation", func(t *testing.T) {
		orders := &fakeOrderRepo{}
		instances := newFakeInstanceRepo()
		instance := openInstance(t, instances, businessID)

		component := testGood(businessID, "Food", 6, 2, 3)
		comp, err := catalogmodels.SetMenuComposition([]uuid.UUID{component.ID})
		if err != nil {
			t.Fatalf("build composition: %v", err)
		}
		menu := &catalogmodels.BusinessGood{
			ID:           uuid.New(),
			BusinessID:   businessID,
			Name:         "lunch menu",
			MainCategory: "Food",
			SellingPrice: decimal.NewFromInt(10),
			CostPrice:    decimal.NewFromInt(2),
			Composition:  comp,
		}
		catalog := &fakeCatalog{goods: map[uuid.UUID]*catalogmodels.BusinessGood{
			menu.ID: menu, component.ID: component,
		}}
		stock := &fakeStock{}
		svc := NewOrderService(orders, instances, catalog, stock, testLogger())

		result, err := svc.Create(context.Background(), businessID, CreateOrderInput{
			SalesInstanceID: instance.ID,
			UserID:          uuid.New(),
			UserRole:        "Waiter",
			BusinessGoodIDs: []uuid.UUID{menu.ID},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if catalog.calls != 2 {
			t.Fatalf("expected a second lookup for the components, got %d calls", catalog.calls)
		}
		if len(stock.deltas) != 1 || !stock.deltas[0].Delta.Equal(decimal.NewFromInt(-3)) {
			t.Fatalf("expected one delta of -3 from the component, got %+v", stock.deltas)
		}
		if !result.StockMutation.Applied {
			t.Fatalf("unexpected stock outcome: %+v", result.StockMutation)
		}
	})

	t.Run("stock failure rides the result, order stays", func(t *testing.T) {
		orders := &fakeOrderRepo{}
		instances := newFakeInstanceRepo()
		instance := openInstance(t, instances, businessID)
		good := testGood(businessID, "Food", 5, 2, 1)
		catalog := &fakeCatalog{goods: map[uuid.UUID]*catalogmodels.BusinessGood{good.ID: good}}
		stock := &fakeStock{adjustErr: errors.New("deadlock detected")}
		svc := NewOrderService(orders, instances, catalog, stock, testLogger())

		result, err := svc.Create(context.Background(), businessID, CreateOrderInput{
			SalesInstanceID: instance.ID,
			UserID:          uuid.New(),
			UserRole:        "Waiter",
			BusinessGoodIDs: []uuid.UUID{good.ID},
		})
		if err != nil {
			t.Fatalf("stock failure must not fail the order: %v", err)
		}
		if len(orders.saved) != 1 {
			t.Fatal("order must stay committed")
		}
		if result.StockMutation.Error == "" {
			t.Fatal("expected stock error on the outcome")
		}
	})
}

func TestOrderService_Void(t *testing.T) {
	businessID := uuid.New()

	t.Run("flows consumed quantities back", func(t *testing.T) {
		orders := &fakeOrderRepo{}
		instances := newFakeInstanceRepo()
		instance := openInstance(t, instances, businessID)
		good := testGood(businessID, "Food", 5, 2, 2)
		catalog := &fakeCatalog{goods: map[uuid.UUID]*catalogmodels.BusinessGood{good.ID: good}}
		stock := &fakeStock{}
		svc := NewOrderService(orders, instances, catalog, stock, testLogger())

		created, err := svc.Create(context.Background(), businessID, CreateOrderInput{
			SalesInstanceID: instance.ID,
			UserID:          uuid.New(),
			UserRole:        "Waiter",
			BusinessGoodIDs: []uuid.UUID{good.ID},
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		result, err := svc.Void(context.Background(), businessID, created.Order.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Order.BillingStatus != models.BillingVoid {
			t.Fatalf("expected void billing, got %q", result.Order.BillingStatus)
		}
		if len(stock.deltas) != 1 || !stock.deltas[0].Delta.Equal(decimal.NewFromInt(2)) {
			t.Fatalf("expected +2 flowing back, got %+v", stock.deltas)
		}
	})

	t.Run("paid order is not voidable", func(t *testing.T) {
		orders := &fakeOrderRepo{}
		instances := newFakeInstanceRepo()
		instance := openInstance(t, instances, businessID)
		good := testGood(businessID, "Food", 5, 2, 1)
		catalog := &fakeCatalog{goods: map[uuid.UUID]*catalogmodels.BusinessGood{good.ID: good}}
		svc := NewOrderService(orders, instances, catalog, &fakeStock{}, testLogger())

		created, err := svc.Create(context.Background(), businessID, CreateOrderInput{
			SalesInstanceID: instance.ID,
			UserID:          uuid.New(),
			UserRole:        "Waiter",
			BusinessGoodIDs: []uuid.UUID{good.ID},
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := svc.MarkPaid(context.Background(), businessID, created.Order.ID); err != nil {
			t.Fatalf("mark paid: %v", err)
		}

		_, err = svc.Void(context.Background(), businessID, created.Order.ID)
		if !errors.Is(err, orderingdomain.ErrOrderNotVoidable) {
			t.Fatalf("expected ErrOrderNotVoidable, got %v", err)
		}
	})
}

func TestSalesInstanceService(t *testing.T) {
	instances := newFakeInstanceRepo()
	svc := NewSalesInstanceService(instances)
	businessID := uuid.New()

	t.Run("open then close", func(t *testing.T) {
		instance, err := svc.Open(context.Background(), businessID, "Table 5", uuid.New())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !instance.IsOpen() {
			t.Fatal("new instance must be occupied")
		}

		closed, err := svc.Close(context.Background(), businessID, instance.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if closed.IsOpen() {
			t.Fatal("closed instance reported open")
		}
	})

	t.Run("empty reference rejected", func(t *testing.T) {
		_, err := svc.Open(context.Background(), businessID, "", uuid.New())
		if !errors.Is(err, orderingdomain.ErrInvalidOrder) {
			t.Fatalf("expected ErrInvalidOrder, got %v", err)
		}
	})
}
