package services

import (
	"github.com/jpsm83/restaurant-pos/pkg/app"
	"github.com/jpsm83/restaurant-pos/pkg/cache"
	"github.com/jpsm83/restaurant-pos/services/catalog/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	SupplierGood *SupplierGoodService
	BusinessGood *BusinessGoodService
}

// New wires all catalog application services with infrastructure from the
// Application container.
func New(a *app.Application) *Services {
	supplierRepo := postgres.NewSupplierGoodRepository(a.Db)
	goodRepo := postgres.NewBusinessGoodRepository(a.Db, a.EventBus)
	goodCache := cache.NewBusinessGoodCache(a.Redis)
	return &Services{
		SupplierGood: NewSupplierGoodService(supplierRepo),
		BusinessGood: NewBusinessGoodService(goodRepo, supplierRepo, goodCache),
	}
}
