package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalogdomain "github.com/jpsm83/restaurant-pos/services/catalog/domain"
	"github.com/jpsm83/restaurant-pos/services/catalog/domain/models"
	"github.com/jpsm83/restaurant-pos/services/catalog/domain/repositories"
)

type fakeSupplierGoodRepo struct {
	goods map[uuid.UUID]*models.SupplierGood
}

func newFakeSupplierGoodRepo() *fakeSupplierGoodRepo {
	return &fakeSupplierGoodRepo{goods: make(map[uuid.UUID]*models.SupplierGood)}
}

func (f *fakeSupplierGoodRepo) Save(_ context.Context, g *models.SupplierGood) error {
	f.goods[g.ID] = g
	return nil
}

func (f *fakeSupplierGoodRepo) GetByID(_ context.Context, businessID, id uuid.UUID) (*models.SupplierGood, error) {
	g, ok := f.goods[id]
	if !ok || g.BusinessID != businessID {
		return nil, catalogdomain.ErrSupplierGoodNotFound
	}
	return g, nil
}

func (f *fakeSupplierGoodRepo) GetManyByIDs(_ context.Context, businessID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*models.SupplierGood, error) {
	out := make(map[uuid.UUID]*models.SupplierGood)
	for _, id := range ids {
		if g, ok := f.goods[id]; ok && g.BusinessID == businessID {
			out[id] = g
		}
	}
	return out, nil
}

func (f *fakeSupplierGoodRepo) FindByBusinessID(_ context.Context, businessID uuid.UUID, _ repositories.QueryOpts) ([]*models.SupplierGood, int, error) {
	var out []*models.SupplierGood
	for _, g := range f.goods {
		if g.BusinessID == businessID {
			out = append(out, g)
		}
	}
	return out, len(out), nil
}

func (f *fakeSupplierGoodRepo) Update(_ context.Context, g *models.SupplierGood) error {
	f.goods[g.ID] = g
	return nil
}

func (f *fakeSupplierGoodRepo) Delete(_ context.Context, businessID, id uuid.UUID) error {
	g, ok := f.goods[id]
	if !ok || g.BusinessID != businessID {
		return catalogdomain.ErrSupplierGoodNotFound
	}
	delete(f.goods, id)
	return nil
}

func (f *fakeSupplierGoodRepo) AdjustDynamicCounts(_ context.Context, businessID uuid.UUID, deltas []repositories.CountDelta) (int, error) {
	applied := 0
	for _, d := range deltas {
		if g, ok := f.goods[d.SupplierGoodID]; ok && g.BusinessID == businessID {
			g.DynamicCountFromLastInventory = g.DynamicCountFromLastInventory.Add(d.Delta)
			applied++
		}
	}
	return applied, nil
}

type fakeBusinessGoodRepo struct {
	goods map[uuid.UUID]*models.BusinessGood
}

func newFakeBusinessGoodRepo() *fakeBusinessGoodRepo {
	return &fakeBusinessGoodRepo{goods: make(map[uuid.UUID]*models.BusinessGood)}
}

func (f *fakeBusinessGoodRepo) Save(_ context.Context, g *models.BusinessGood) error {
	f.goods[g.ID] = g
	return nil
}

func (f *fakeBusinessGoodRepo) GetByID(_ context.Context, businessID, id uuid.UUID) (*models.BusinessGood, error) {
	g, ok := f.goods[id]
	if !ok || g.BusinessID != businessID {
		return nil, catalogdomain.ErrBusinessGoodNotFound
	}
	return g, nil
}

func (f *fakeBusinessGoodRepo) GetManyByIDs(_ context.Context, businessID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*models.BusinessGood, error) {
	out := make(map[uuid.UUID]*models.BusinessGood)
	for _, id := range ids {
		if g, ok := f.goods[id]; ok && g.BusinessID == businessID {
			out[id] = g
		}
	}
	return out, nil
}

func (f *fakeBusinessGoodRepo) FindByBusinessID(_ context.Context, businessID uuid.UUID, _ repositories.QueryOpts) ([]*models.BusinessGood, int, error) {
	var out []*models.BusinessGood
	for _, g := range f.goods {
		if g.BusinessID == businessID {
			out = append(out, g)
		}
	}
	return out, len(out), nil
}

func (f *fakeBusinessGoodRepo) Update(_ context.Context, g *models.BusinessGood) error {
	f.goods[g.ID] = g
	return nil
}

func (f *fakeBusinessGoodRepo) Delete(_ context.Context, businessID, id uuid.UUID) error {
	g, ok := f.goods[id]
	if !ok || g.BusinessID != businessID {
		return catalogdomain.ErrBusinessGoodNotFound
	}
	delete(f.goods, id)
	return nil
}

func storedSupplierGood(t *testing.T, repo *fakeSupplierGoodRepo, businessID uuid.UUID) *models.SupplierGood {
	t.Helper()
	g, err := models.NewSupplierGood(
		businessID, uuid.New(),
		"Whole Milk", "Dairy", "", "liter",
		decimal.NewFromInt(10), decimal.NewFromInt(20),
		decimal.NewFromInt(5), decimal.NewFromInt(2),
		nil,
	)
	if err != nil {
		t.Fatalf("new supplier good: %v", err)
	}
	if err := repo.Save(context.Background(), g); err != nil {
		t.Fatalf("save supplier good: %v", err)
	}
	return g
}

func storedBusinessGood(t *testing.T, repo *fakeBusinessGoodRepo, businessID uuid.UUID) *models.BusinessGood {
	t.Helper()
	g, err := models.NewBusinessGood(
		businessID, "Latte", "latte", "Beverage", "",
		decimal.NewFromInt(4), true, true, "",
	)
	if err != nil {
		t.Fatalf("new business good: %v", err)
	}
	if err := repo.Save(context.Background(), g); err != nil {
		t.Fatalf("save business good: %v", err)
	}
	return g
}

func TestSupplierGoodService_Update(t *testing.T) {
	businessID := uuid.New()

	t.Run("field-subset update keeps the in-use flag", func(t *testing.T) {
		repo := newFakeSupplierGoodRepo()
		good := storedSupplierGood(t, repo, businessID)
		svc := NewSupplierGoodService(repo)

		updated, err := svc.Update(context.Background(), businessID, good.ID, UpdateSupplierGoodInput{
			Name: "Whole Milk 3.5%",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Name != "Whole Milk 3.5%" {
			t.Fatalf("expected renamed good, got %q", updated.Name)
		}
		if !updated.CurrentlyInUse {
			t.Fatal("rename-only update must not flip CurrentlyInUse")
		}
	})

	t.Run("explicit false retires the good", func(t *testing.T) {
		repo := newFakeSupplierGoodRepo()
		good := storedSupplierGood(t, repo, businessID)
		svc := NewSupplierGoodService(repo)

		inUse := false
		updated, err := svc.Update(context.Background(), businessID, good.ID, UpdateSupplierGoodInput{
			CurrentlyInUse: &inUse,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.CurrentlyInUse {
			t.Fatal("explicit false must retire the good")
		}
	})

	t.Run("pricing change recomputes the unit price", func(t *testing.T) {
		repo := newFakeSupplierGoodRepo()
		good := storedSupplierGood(t, repo, businessID)
		svc := NewSupplierGoodService(repo)

		updated, err := svc.Update(context.Background(), businessID, good.ID, UpdateSupplierGoodInput{
			WholesalePrice: decimal.NewFromInt(30),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !updated.PricePerUnit.Equal(decimal.NewFromInt(3)) {
			t.Fatalf("expected unit price 3, got %s", updated.PricePerUnit)
		}
	})
}

func TestBusinessGoodService_Update(t *testing.T) {
	businessID := uuid.New()

	t.Run("field-subset update keeps menu flags", func(t *testing.T) {
		repo := newFakeBusinessGoodRepo()
		good := storedBusinessGood(t, repo, businessID)
		svc := NewBusinessGoodService(repo, newFakeSupplierGoodRepo(), nil)

		updated, err := svc.Update(context.Background(), businessID, good.ID, UpdateBusinessGoodInput{
			Name: "Latte Macchiato",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !updated.OnMenu || !updated.Available {
			t.Fatal("rename-only update must not take the good off the menu")
		}
	})

	t.Run("explicit false takes the good off the menu", func(t *testing.T) {
		repo := newFakeBusinessGoodRepo()
		good := storedBusinessGood(t, repo, businessID)
		svc := NewBusinessGoodService(repo, newFakeSupplierGoodRepo(), nil)

		off := false
		updated, err := svc.Update(context.Background(), businessID, good.ID, UpdateBusinessGoodInput{
			OnMenu: &off,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.OnMenu {
			t.Fatal("explicit false must take the good off the menu")
		}
		if !updated.Available {
			t.Fatal("availability was not part of the request")
		}
	})
}
