package services

import (
	"github.com/jpsm83/restaurant-pos/pkg/app"
	catalogsvcs "github.com/jpsm83/restaurant-pos/services/catalog/application/services"
	"github.com/jpsm83/restaurant-pos/services/ordering/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
type Services struct {
	SalesInstance *SalesInstanceService
	Order         *OrderService
}

// New wires the ordering application services with infrastructure from the
// Application container. The catalog context supplies good lookups and the
// atomic stock-adjust primitive.
func New(a *app.Application) *Services {
	instanceRepo := postgres.NewSalesInstanceRepository(a.Db)
	orderRepo := postgres.NewOrderRepository(a.Db, a.EventBus)
	catalog := catalogsvcs.New(a)
	return &Services{
		SalesInstance: NewSalesInstanceService(instanceRepo),
		Order: NewOrderService(
			orderRepo, instanceRepo,
			catalog.BusinessGood, catalog.SupplierGood,
			a.Logger,
		),
	}
}
