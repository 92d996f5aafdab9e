package services

import (
	"github.com/jpsm83/restaurant-pos/pkg/app"
	"github.com/jpsm83/restaurant-pos/services/inventory/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
type Services struct {
	Inventory *InventoryService
}

// New wires the inventory application services with infrastructure from the
// Application container.
func New(a *app.Application) *Services {
	repo := postgres.NewInventoryRepository(a.Db)
	return &Services{
		Inventory: NewInventoryService(repo),
	}
}
