package services

import (
	"github.com/jpsm83/restaurant-pos/pkg/app"
	invsvcs "github.com/jpsm83/restaurant-pos/services/inventory/application/services"
	"github.com/jpsm83/restaurant-pos/services/purchasing/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
type Services struct {
	Purchase *PurchaseService
	Supplier *SupplierService
}

// New wires the purchasing application services with infrastructure from the
// Application container. The inventory context's service doubles as the
// Reconciler.
func New(a *app.Application) *Services {
	supplierRepo := postgres.NewSupplierRepository(a.Db)
	purchaseRepo := postgres.NewPurchaseRepository(a.Db, a.EventBus)
	reconciler := invsvcs.New(a).Inventory
	return &Services{
		Purchase: NewPurchaseService(purchaseRepo, supplierRepo, reconciler, a.EventBus, a.Logger),
		Supplier: NewSupplierService(supplierRepo),
	}
}
